package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/omarionnn/mom-app/internal/models"
)

// GroupMessageRepository defines interactions for group messages.
type GroupMessageRepository interface {
	Create(ctx context.Context, groupID, senderID int, content string) (models.GroupMessage, error)
	ListForGroup(ctx context.Context, groupID int) ([]models.GroupMessage, error)
	Get(ctx context.Context, messageID int) (models.GroupMessage, error)
	SoftDelete(ctx context.Context, messageID, deleterID int) error
}

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// Create persists a group message.
func (r *GroupMessageRepo) Create(ctx context.Context, groupID, senderID int, content string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO group_messages (group_id, sender_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, group_id, sender_id, content, deleted_at, deleted_by, created_at`,
		groupID, senderID, content).
		Scan(&msg.ID, &msg.GroupID, &msg.SenderID, &msg.Content, &msg.DeletedAt, &msg.DeletedBy, &msg.CreatedAt)
	return msg, err
}

// ListForGroup returns messages oldest first, excluding soft-deleted rows.
func (r *GroupMessageRepo) ListForGroup(ctx context.Context, groupID int) ([]models.GroupMessage, error) {
	var msgs []models.GroupMessage
	err := r.db.SelectContext(ctx, &msgs, `
        SELECT * FROM group_messages
        WHERE group_id=$1 AND deleted_at IS NULL
        ORDER BY created_at ASC, id ASC`, groupID)
	return msgs, err
}

// Get fetches a single message, soft-deleted rows included.
func (r *GroupMessageRepo) Get(ctx context.Context, messageID int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg, `SELECT * FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	return msg, err
}

// SoftDelete marks a message deleted, recording who deleted it. The row
// is retained; read paths filter it out. Deleting twice is a no-op.
func (r *GroupMessageRepo) SoftDelete(ctx context.Context, messageID, deleterID int) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE group_messages SET deleted_at = NOW(), deleted_by = $2
        WHERE id=$1 AND deleted_at IS NULL`, messageID, deleterID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		// Either absent or already deleted; distinguish for callers.
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM group_messages WHERE id=$1)`, messageID); err != nil {
			return err
		}
		if !exists {
			return ErrMessageNotFound
		}
	}
	return nil
}
