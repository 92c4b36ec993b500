package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"messenger-service/internal/feed"
	"messenger-service/internal/models"
)

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	Send(ctx context.Context, senderID, receiverID int64, text string, mediaURL *string) (models.Message, error)
	Snapshot(ctx context.Context) ([]models.Message, error)
	ConversationHistory(ctx context.Context, userID, counterpartID int64) ([]models.Message, error)
	UnreadCount(ctx context.Context, userID, counterpartID int64) (int, error)
	MarkConversationRead(ctx context.Context, userID, counterpartID int64) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db    *sqlx.DB
	feeds feed.Notifier
}

// NewMessageRepo constructs MessageRepo. feeds may be nil in tests.
func NewMessageRepo(db *sqlx.DB, feeds feed.Notifier) *MessageRepo {
	return &MessageRepo{db: db, feeds: feeds}
}

// Send stores a direct message.
func (r *MessageRepo) Send(ctx context.Context, senderID, receiverID int64, text string, mediaURL *string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, text, media_url)
        VALUES ($1, $2, $3, $4)
        RETURNING id, sender_id, receiver_id, text, media_url, is_read, created_at`,
		senderID, receiverID, text, mediaURL).StructScan(&msg)
	if err != nil {
		return models.Message{}, err
	}
	r.notify(ctx)
	return msg, nil
}

// Snapshot returns the complete current message table, newest first with id
// as tie-break. This is the feed's load function; consumers filter to their
// own rows client-side.
func (r *MessageRepo) Snapshot(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, text, media_url, is_read, created_at
        FROM messages ORDER BY created_at DESC, id DESC`)
	return msgs, err
}

// ConversationHistory returns the ordered two-party history between userID
// and counterpartID, oldest first.
func (r *MessageRepo) ConversationHistory(ctx context.Context, userID, counterpartID int64) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, sender_id, receiver_id, text, media_url, is_read, created_at
        FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at ASC, id ASC`, userID, counterpartID)
	return msgs, err
}

// UnreadCount counts messages from counterpartID to userID not yet read.
func (r *MessageRepo) UnreadCount(ctx context.Context, userID, counterpartID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages
        WHERE sender_id=$1 AND receiver_id=$2 AND is_read = FALSE`, counterpartID, userID)
	return count, err
}

// MarkConversationRead flips every unread message from counterpartID to
// userID in one bulk update.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, userID, counterpartID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE
        WHERE sender_id=$1 AND receiver_id=$2 AND is_read = FALSE`, counterpartID, userID)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count > 0 {
		r.notify(ctx)
	}
	return nil
}

func (r *MessageRepo) notify(ctx context.Context) {
	if r.feeds != nil {
		r.feeds.TableChanged(ctx, feed.TableMessages)
	}
}
