package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/omarionnn/mom-app/internal/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRepository abstracts match persistence. Rows hold the pair in
// canonical order (user1_id < user2_id) so lookups are order-independent.
type MatchRepository interface {
	CreateOrGet(ctx context.Context, userA, userB int) (models.Match, bool, error)
	GetByID(ctx context.Context, matchID int) (models.Match, error)
	GetByUsers(ctx context.Context, userA, userB int) (models.Match, error)
	ListForUser(ctx context.Context, userID int) ([]models.Match, error)
	DeleteWithMessages(ctx context.Context, userA, userB int) error
}

// MatchRepo is a sqlx implementation of MatchRepository.
type MatchRepo struct {
	db *sqlx.DB
}

// NewMatchRepo constructs a MatchRepo.
func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// CreateOrGet inserts the canonical match for the pair, or returns the
// existing row when two near-simultaneous right-swipes race; the second
// reports created=false. At most one match ever exists per pair.
func (r *MatchRepo) CreateOrGet(ctx context.Context, userA, userB int) (models.Match, bool, error) {
	user1, user2 := models.CanonicalPair(userA, userB)

	var match models.Match
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO matches (user1_id, user2_id)
        VALUES ($1, $2)
        ON CONFLICT (user1_id, user2_id) DO NOTHING
        RETURNING id, user1_id, user2_id, created_at`,
		user1, user2).
		Scan(&match.ID, &match.User1ID, &match.User2ID, &match.CreatedAt)
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, false, err
	}

	match, err = r.GetByUsers(ctx, user1, user2)
	return match, false, err
}

// GetByID fetches a match by id.
func (r *MatchRepo) GetByID(ctx context.Context, matchID int) (models.Match, error) {
	var match models.Match
	err := r.db.GetContext(ctx, &match, `SELECT * FROM matches WHERE id=$1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrMatchNotFound
	}
	return match, err
}

// GetByUsers fetches the match for a pair regardless of argument order.
func (r *MatchRepo) GetByUsers(ctx context.Context, userA, userB int) (models.Match, error) {
	user1, user2 := models.CanonicalPair(userA, userB)
	var match models.Match
	err := r.db.GetContext(ctx, &match,
		`SELECT * FROM matches WHERE user1_id=$1 AND user2_id=$2`, user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrMatchNotFound
	}
	return match, err
}

// ListForUser returns every match the user participates in, newest first.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int) ([]models.Match, error) {
	var matches []models.Match
	err := r.db.SelectContext(ctx, &matches, `
        SELECT * FROM matches
        WHERE user1_id=$1 OR user2_id=$1
        ORDER BY created_at DESC, id DESC`, userID)
	return matches, err
}

// DeleteWithMessages removes the match and both directions of its message
// history in one transaction. Unmatching an absent pair is a no-op.
func (r *MatchRepo) DeleteWithMessages(ctx context.Context, userA, userB int) error {
	user1, user2 := models.CanonicalPair(userA, userB)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
        DELETE FROM messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)`,
		user1, user2); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM matches WHERE user1_id=$1 AND user2_id=$2`, user1, user2); err != nil {
		return err
	}

	return tx.Commit()
}
