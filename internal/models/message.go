package models

import "time"

// Message is a direct message between two matched users. ReadAt moves
// monotonically from null to a timestamp and is never reversed.
type Message struct {
	ID          int        `db:"id" json:"id"`
	SenderID    int        `db:"sender_id" json:"sender_id"`
	RecipientID int        `db:"recipient_id" json:"recipient_id"`
	Content     string     `db:"content" json:"content"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// ConversationSummary is the derived per-match view: the counterpart, the
// most recent message between the two, and the unread count addressed to
// the requesting user. It is recomputed on demand, never persisted.
type ConversationSummary struct {
	MatchID          int       `json:"match_id"`
	OtherUserID      int       `json:"other_user_id"`
	OtherDisplayName string    `json:"other_display_name,omitempty"`
	LastMessage      *Message  `json:"last_message,omitempty"`
	UnreadCount      int       `json:"unread_count"`
	MatchedAt        time.Time `json:"matched_at"`
}

// ChatEvent is emitted over conversation websockets. Payloads carry
// identifiers only; clients re-fetch aggregates from the read endpoints.
type ChatEvent struct {
	Type       string   `json:"type"`
	Message    *Message `json:"message,omitempty"`
	FromUserID int      `json:"from_user_id,omitempty"`
}

// UserEvent is emitted over per-user notification websockets.
type UserEvent struct {
	Type       string `json:"type"`
	MatchID    int    `json:"match_id,omitempty"`
	FromUserID int    `json:"from_user_id,omitempty"`
}
