package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messenger-service/internal/feed"
	"messenger-service/internal/models"
)

var (
	ErrDuplicateRequest  = errors.New("friend request already sent")
	ErrRequestNotPending = errors.New("friend request is not pending")
)

const uniqueViolation = "23505"

// FriendRepository abstracts friend request and friendship persistence.
type FriendRepository interface {
	CreateRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error)
	PendingBetween(ctx context.Context, senderID, receiverID int64) (bool, error)
	DeleteRequest(ctx context.Context, senderID, receiverID int64) error
	Accept(ctx context.Context, requestID, receiverID int64) (models.FriendRequest, error)
	Decline(ctx context.Context, requestID, receiverID int64) error
	IncomingPending(ctx context.Context, receiverID int64) ([]models.FriendRequest, error)
	PurgeTerminalRequests(ctx context.Context) error
	AreFriends(ctx context.Context, userID, friendID int64) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
	SnapshotRequests(ctx context.Context) ([]models.FriendRequest, error)
	SnapshotFriendships(ctx context.Context) ([]models.Friendship, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db    *sqlx.DB
	feeds feed.Notifier
}

// NewFriendRepo constructs a FriendRepo. feeds may be nil in tests.
func NewFriendRepo(db *sqlx.DB, feeds feed.Notifier) *FriendRepo {
	return &FriendRepo{db: db, feeds: feeds}
}

// CreateRequest inserts a pending request. The partial unique index rejects
// a second pending row for the same ordered pair.
func (r *FriendRepo) CreateRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.QueryRowxContext(ctx, `INSERT INTO friend_requests (sender_id, receiver_id, status)
        VALUES ($1, $2, $3)
        RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		senderID, receiverID, models.RequestPending).StructScan(&req)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return models.FriendRequest{}, ErrDuplicateRequest
		}
		return models.FriendRequest{}, err
	}
	r.notify(ctx, feed.TableFriendRequests)
	return req, nil
}

// PendingBetween reports whether a pending request from senderID to
// receiverID exists.
func (r *FriendRepo) PendingBetween(ctx context.Context, senderID, receiverID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friend_requests
        WHERE sender_id=$1 AND receiver_id=$2 AND status=$3)`, senderID, receiverID, models.RequestPending)
	return exists, err
}

// DeleteRequest cancels a pending request. Deleting an absent row is a
// success, not an error.
func (r *FriendRepo) DeleteRequest(ctx context.Context, senderID, receiverID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friend_requests
        WHERE sender_id=$1 AND receiver_id=$2 AND status=$3`, senderID, receiverID, models.RequestPending)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count > 0 {
		r.notify(ctx, feed.TableFriendRequests)
	}
	return nil
}

// Accept flips a pending request to accepted and inserts both symmetric
// friendship rows in a single transaction. The status guard makes a raced
// duplicate accept fail instead of inserting twice; the conflict clause
// tolerates a leftover partial friendship.
func (r *FriendRepo) Accept(ctx context.Context, requestID, receiverID int64) (models.FriendRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.FriendRequest{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var req models.FriendRequest
	err = tx.QueryRowxContext(ctx, `UPDATE friend_requests SET status=$1, updated_at=NOW()
        WHERE id=$2 AND receiver_id=$3 AND status=$4
        RETURNING id, sender_id, receiver_id, status, created_at, updated_at`,
		models.RequestAccepted, requestID, receiverID, models.RequestPending).StructScan(&req)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendRequest{}, ErrRequestNotPending
	}
	if err != nil {
		return models.FriendRequest{}, err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO friendships (user_id, friend_id)
        VALUES ($1, $2), ($2, $1)
        ON CONFLICT (user_id, friend_id) DO NOTHING`, req.SenderID, req.ReceiverID); err != nil {
		return models.FriendRequest{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.FriendRequest{}, err
	}

	r.notify(ctx, feed.TableFriendRequests)
	r.notify(ctx, feed.TableFriendships)
	return req, nil
}

// Decline flips a pending request to declined. A request that is already
// terminal or absent is left untouched; declining twice is not an error.
func (r *FriendRepo) Decline(ctx context.Context, requestID, receiverID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE friend_requests SET status=$1, updated_at=NOW()
        WHERE id=$2 AND receiver_id=$3 AND status=$4`,
		models.RequestDeclined, requestID, receiverID, models.RequestPending)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count > 0 {
		r.notify(ctx, feed.TableFriendRequests)
	}
	return nil
}

// IncomingPending lists pending requests addressed to receiverID.
func (r *FriendRepo) IncomingPending(ctx context.Context, receiverID int64) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.SelectContext(ctx, &reqs, `SELECT id, sender_id, receiver_id, status, created_at, updated_at
        FROM friend_requests WHERE receiver_id=$1 AND status=$2
        ORDER BY created_at DESC, id DESC`, receiverID, models.RequestPending)
	return reqs, err
}

// PurgeTerminalRequests deletes accepted and declined rows so the table
// holds only pending requests long-term.
func (r *FriendRepo) PurgeTerminalRequests(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friend_requests WHERE status <> $1`, models.RequestPending)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count > 0 {
		log.Printf("purged %d terminal friend requests", count)
		r.notify(ctx, feed.TableFriendRequests)
	}
	return nil
}

// AreFriends checks for the directional friendship row.
func (r *FriendRepo) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friendships
        WHERE user_id=$1 AND friend_id=$2)`, userID, friendID)
	return exists, err
}

// DeleteFriendship removes both directional rows. Either row already being
// gone is tolerated, so unfriend is idempotent.
func (r *FriendRepo) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friendships
        WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)`, userID, friendID)
	if err != nil {
		return err
	}
	if count, err := res.RowsAffected(); err == nil && count > 0 {
		r.notify(ctx, feed.TableFriendships)
	}
	return nil
}

// SnapshotRequests returns the complete friend_requests table for the feed.
func (r *FriendRepo) SnapshotRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := r.db.SelectContext(ctx, &reqs, `SELECT id, sender_id, receiver_id, status, created_at, updated_at
        FROM friend_requests ORDER BY created_at DESC, id DESC`)
	return reqs, err
}

// SnapshotFriendships returns the complete friendships table for the feed.
func (r *FriendRepo) SnapshotFriendships(ctx context.Context) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.SelectContext(ctx, &rows, `SELECT user_id, friend_id, created_at
        FROM friendships ORDER BY user_id ASC, friend_id ASC`)
	return rows, err
}

func (r *FriendRepo) notify(ctx context.Context, table feed.Table) {
	if r.feeds != nil {
		r.feeds.TableChanged(ctx, table)
	}
}
