package models

import "time"

// GroupType categorizes a group.
type GroupType string

const (
	GroupTypeSeasonOfLife  GroupType = "season_of_life"
	GroupTypeInterestBased GroupType = "interest_based"
	GroupTypeLocal         GroupType = "local"
)

// Role qualifies a user's membership in a group.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleMember  Role = "member"
	RolePending Role = "pending"
)

// Group is a topic- or location-based chat room. Groups are created by
// admin flows; this service only reads them and manages memberships.
type Group struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	GroupType   GroupType `db:"group_type" json:"group_type"`
	Category    *string   `db:"category" json:"category,omitempty"`
	City        *string   `db:"city" json:"city,omitempty"`
	MinAge      *int      `db:"min_age" json:"min_age,omitempty"`
	MaxAge      *int      `db:"max_age" json:"max_age,omitempty"`
	InterestTag *string   `db:"interest_tag" json:"interest_tag,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// GroupWithMembership annotates a group with the derived member count and
// whether the requesting user holds a membership row.
type GroupWithMembership struct {
	Group
	MemberCount int  `db:"member_count" json:"member_count"`
	IsMember    bool `db:"is_member" json:"is_member"`
}

// GroupMembership joins a user to a group, unique per (group, user).
type GroupMembership struct {
	GroupID   int       `db:"group_id" json:"group_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupMessage is a message in a group. Soft-deleted messages keep their
// row but are excluded from every read path.
type GroupMessage struct {
	ID        int        `db:"id" json:"id"`
	GroupID   int        `db:"group_id" json:"group_id"`
	SenderID  int        `db:"sender_id" json:"sender_id"`
	Content   string     `db:"content" json:"content"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy *int       `db:"deleted_by" json:"deleted_by,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// GroupEvent is emitted over group websockets.
type GroupEvent struct {
	Type      string        `json:"type"`
	Message   *GroupMessage `json:"message,omitempty"`
	MessageID int           `json:"message_id,omitempty"`
}
