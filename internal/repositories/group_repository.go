package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/omarionnn/mom-app/internal/models"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupRepository abstracts group and membership persistence.
type GroupRepository interface {
	GetGroup(ctx context.Context, groupID int) (models.Group, error)
	ListWithMembership(ctx context.Context, userID int, city *string) ([]models.GroupWithMembership, error)
	Join(ctx context.Context, groupID, userID int) (bool, error)
	Leave(ctx context.Context, groupID, userID int) error
	IsMember(ctx context.Context, groupID, userID int) (bool, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// GetGroup fetches a single group.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT * FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// ListWithMembership returns all groups annotated with the derived member
// count and whether the user holds a membership row (any role counts). A
// city filter keeps groups with no city restriction.
func (r *GroupRepo) ListWithMembership(ctx context.Context, userID int, city *string) ([]models.GroupWithMembership, error) {
	query := `
        SELECT g.*,
            (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count,
            EXISTS(SELECT 1 FROM group_members gm WHERE gm.group_id = g.id AND gm.user_id = $1) AS is_member
        FROM groups g
        WHERE ($2::text IS NULL OR g.city IS NULL OR g.city = $2)
        ORDER BY g.created_at DESC, g.id DESC`
	var groups []models.GroupWithMembership
	err := r.db.SelectContext(ctx, &groups, query, userID, city)
	return groups, err
}

// Join inserts a member row and reports whether one was written. A
// duplicate membership leaves the existing row (and its role) untouched.
func (r *GroupRepo) Join(ctx context.Context, groupID, userID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO group_members (group_id, user_id, role)
        VALUES ($1, $2, 'member')
        ON CONFLICT (group_id, user_id) DO NOTHING`, groupID, userID)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Leave deletes the membership row; absence is not an error.
func (r *GroupRepo) Leave(ctx context.Context, groupID, userID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	return err
}

// IsMember checks membership.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}
