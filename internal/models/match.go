package models

import "time"

// Match is the mutual relationship materialized when both users swiped
// right on each other. The pair is stored canonically with
// user1_id < user2_id so (A,B) and (B,A) collide to the same row.
type Match struct {
	ID        int       `db:"id" json:"id"`
	User1ID   int       `db:"user1_id" json:"user1_id"`
	User2ID   int       `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CanonicalPair orders two user ids so the smaller one comes first.
func CanonicalPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasUser reports whether the user is one of the two participants.
func (m Match) HasUser(userID int) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherUser returns the counterpart of userID in the match.
func (m Match) OtherUser(userID int) (int, bool) {
	switch userID {
	case m.User1ID:
		return m.User2ID, true
	case m.User2ID:
		return m.User1ID, true
	}
	return 0, false
}
