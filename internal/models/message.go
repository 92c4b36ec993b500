package models

import "time"

// Message is a direct message between two users. Rows are immutable except
// for the is_read flag, which flips false to true exactly once.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID int64     `db:"receiver_id" json:"receiver_id"`
	Text       string    `db:"text" json:"text"`
	MediaURL   *string   `db:"media_url" json:"media_url,omitempty"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Involves reports whether userID is a participant of the message.
func (m Message) Involves(userID int64) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Counterpart returns the other participant relative to userID.
func (m Message) Counterpart(userID int64) int64 {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
