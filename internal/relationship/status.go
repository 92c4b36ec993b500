package relationship

import "messenger-service/internal/models"

// Status is the derived relationship between the current user and a
// counterpart. It is never stored; it is recomputed from the raw
// friend_requests and friendships rows on demand.
type Status string

const (
	StatusNone            Status = "none"
	StatusPendingSent     Status = "pending_sent"
	StatusPendingReceived Status = "pending_received"
	StatusFriend          Status = "friend"
)

// Derive resolves the status of (me, other) from full snapshots of the two
// tables. Priority order is fixed, first match wins: an existing friendship
// row beats any pending request, and an outgoing pending request beats an
// incoming one. With mutual pending requests the two users therefore see
// asymmetric statuses until one side acts.
func Derive(me, other int64, requests []models.FriendRequest, friendships []models.Friendship) Status {
	for _, f := range friendships {
		if f.UserID == me && f.FriendID == other {
			return StatusFriend
		}
	}
	for _, req := range requests {
		if req.Status != models.RequestPending {
			continue
		}
		if req.SenderID == me && req.ReceiverID == other {
			return StatusPendingSent
		}
	}
	for _, req := range requests {
		if req.Status != models.RequestPending {
			continue
		}
		if req.SenderID == other && req.ReceiverID == me {
			return StatusPendingReceived
		}
	}
	return StatusNone
}
