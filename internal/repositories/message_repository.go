package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/omarionnn/mom-app/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository abstracts direct-message persistence.
type MessageRepository interface {
	Create(ctx context.Context, senderID, recipientID int, content string) (models.Message, error)
	LatestBetween(ctx context.Context, userA, userB int) (*models.Message, error)
	ListBetween(ctx context.Context, userA, userB int) ([]models.Message, error)
	UnreadCount(ctx context.Context, fromID, toID int) (int, error)
	TotalUnread(ctx context.Context, userID int) (int, error)
	MarkThreadRead(ctx context.Context, fromID, toID int) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a direct message.
func (r *MessageRepo) Create(ctx context.Context, senderID, recipientID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO messages (sender_id, recipient_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, sender_id, recipient_id, content, read_at, created_at`,
		senderID, recipientID, content).
		Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.ReadAt, &msg.CreatedAt)
	return msg, err
}

// LatestBetween returns the most recent message between two users in
// either direction, or nil when the pair has no history. Ties on
// created_at fall back to the higher id so the result is deterministic.
func (r *MessageRepo) LatestBetween(ctx context.Context, userA, userB int) (*models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `
        SELECT * FROM messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY created_at DESC, id DESC
        LIMIT 1`, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListBetween returns the full thread between two users, oldest first.
func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `
        SELECT * FROM messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY created_at ASC, id ASC`, userA, userB)
	return msgs, err
}

// UnreadCount counts unread messages from one user to another.
func (r *MessageRepo) UnreadCount(ctx context.Context, fromID, toID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
        SELECT COUNT(*) FROM messages
        WHERE sender_id=$1 AND recipient_id=$2 AND read_at IS NULL`, fromID, toID)
	return count, err
}

// TotalUnread counts every unread message addressed to the user across all
// conversations. It always equals the sum of per-thread unread counts.
func (r *MessageRepo) TotalUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE recipient_id=$1 AND read_at IS NULL`, userID)
	return count, err
}

// MarkThreadRead stamps every unread message from one user to another.
// The IS NULL guard keeps already-set timestamps untouched, so repeat
// calls are no-ops.
func (r *MessageRepo) MarkThreadRead(ctx context.Context, fromID, toID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE messages SET read_at = NOW()
        WHERE sender_id=$1 AND recipient_id=$2 AND read_at IS NULL`, fromID, toID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
