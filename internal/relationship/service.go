package relationship

import (
	"context"
	"errors"
	"log"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrPendingFromOther = errors.New("this user already sent you a friend request")
)

// Service executes friendship lifecycle transitions and answers status
// queries. Write paths propagate errors to the caller; the status read path
// degrades to StatusNone.
type Service struct {
	friends repositories.FriendRepository
}

// NewService constructs the Service.
func NewService(friends repositories.FriendRepository) *Service {
	return &Service{friends: friends}
}

// StatusWith reports the relationship between me and other using store
// point reads, in the same priority order as Derive. Any store failure
// degrades to StatusNone.
func (s *Service) StatusWith(ctx context.Context, me, other int64) Status {
	friends, err := s.friends.AreFriends(ctx, me, other)
	if err != nil {
		return StatusNone
	}
	if friends {
		return StatusFriend
	}
	if sent, err := s.friends.PendingBetween(ctx, me, other); err == nil && sent {
		return StatusPendingSent
	}
	if received, err := s.friends.PendingBetween(ctx, other, me); err == nil && received {
		return StatusPendingReceived
	}
	return StatusNone
}

// SendRequest creates a pending request from me to other. It conflicts when
// the two are already friends or when a pending request already exists in
// either direction.
func (s *Service) SendRequest(ctx context.Context, me, other int64) (models.FriendRequest, error) {
	if me == other {
		return models.FriendRequest{}, ErrSelfRequest
	}

	friends, err := s.friends.AreFriends(ctx, me, other)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if friends {
		return models.FriendRequest{}, ErrAlreadyFriends
	}

	sent, err := s.friends.PendingBetween(ctx, me, other)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if sent {
		return models.FriendRequest{}, repositories.ErrDuplicateRequest
	}

	received, err := s.friends.PendingBetween(ctx, other, me)
	if err != nil {
		return models.FriendRequest{}, err
	}
	if received {
		return models.FriendRequest{}, ErrPendingFromOther
	}

	// The guards above can pass for two racers; the partial unique index
	// still rejects the second insert.
	return s.friends.CreateRequest(ctx, me, other)
}

// CancelRequest withdraws my pending request to other. Canceling an absent
// request is a no-op.
func (s *Service) CancelRequest(ctx context.Context, me, other int64) error {
	return s.friends.DeleteRequest(ctx, me, other)
}

// AcceptRequest accepts a pending request addressed to me. The status flip
// and both friendship rows commit atomically; terminal rows are purged
// afterwards on a best-effort basis.
func (s *Service) AcceptRequest(ctx context.Context, requestID, me int64) (models.FriendRequest, error) {
	req, err := s.friends.Accept(ctx, requestID, me)
	if err != nil {
		return models.FriendRequest{}, err
	}
	s.purge(ctx)
	return req, nil
}

// DeclineRequest declines a pending request addressed to me. Declining a
// request that is already terminal or absent succeeds silently.
func (s *Service) DeclineRequest(ctx context.Context, requestID, me int64) error {
	if err := s.friends.Decline(ctx, requestID, me); err != nil {
		return err
	}
	s.purge(ctx)
	return nil
}

// Unfriend deletes both directional friendship rows. Safe to call twice.
func (s *Service) Unfriend(ctx context.Context, me, other int64) error {
	return s.friends.DeleteFriendship(ctx, me, other)
}

// IncomingRequests lists pending requests addressed to me. Read path: a
// store failure degrades to an empty list.
func (s *Service) IncomingRequests(ctx context.Context, me int64) []models.FriendRequest {
	reqs, err := s.friends.IncomingPending(ctx, me)
	if err != nil {
		log.Printf("incoming requests load failed user=%d: %v", me, err)
		return []models.FriendRequest{}
	}
	if reqs == nil {
		reqs = []models.FriendRequest{}
	}
	return reqs
}

func (s *Service) purge(ctx context.Context) {
	if err := s.friends.PurgeTerminalRequests(ctx); err != nil {
		log.Printf("terminal request purge failed: %v", err)
	}
}
