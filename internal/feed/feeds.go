package feed

import (
	"context"

	"messenger-service/internal/models"
)

// Feeds bundles the per-table hubs behind a single Notifier so repositories
// do not need to know which hub serves which table.
type Feeds struct {
	Messages    *Hub[models.Message]
	Requests    *Hub[models.FriendRequest]
	Friendships *Hub[models.Friendship]
}

// TableChanged routes a write notification to the hub owning the table.
func (f *Feeds) TableChanged(ctx context.Context, table Table) {
	if f == nil {
		return
	}
	switch table {
	case TableMessages:
		if f.Messages != nil {
			f.Messages.Notify(ctx)
		}
	case TableFriendRequests:
		if f.Requests != nil {
			f.Requests.Notify(ctx)
		}
	case TableFriendships:
		if f.Friendships != nil {
			f.Friendships.Notify(ctx)
		}
	}
}
