package models

import "time"

// FriendRequest statuses. Accepted and declined are terminal; terminal rows
// are purged shortly after the transition, so the table logically holds only
// pending requests long-term.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// FriendRequest is a directed request from sender to receiver. At most one
// pending row may exist per ordered (sender_id, receiver_id) pair.
type FriendRequest struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID int64     `db:"receiver_id" json:"receiver_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Friendship is one directional half of a friendship. A friendship between
// two users is materialized as two symmetric rows; a single row on its own
// is a corrupt partial state.
type Friendship struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	FriendID  int64     `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
