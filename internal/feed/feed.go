package feed

import (
	"context"
	"log"
	"sync"

	"messenger-service/internal/observability"
)

// Table identifies one subscribable table of the backing store.
type Table string

const (
	TableMessages       Table = "messages"
	TableFriendRequests Table = "friend_requests"
	TableFriendships    Table = "friendships"
)

// Notifier is the write-side hook: repositories call TableChanged after
// every successful insert, update or delete.
type Notifier interface {
	TableChanged(ctx context.Context, table Table)
}

// LoadFunc returns the complete current row set for a table.
type LoadFunc[T any] func(ctx context.Context) ([]T, error)

// Subscription delivers full table snapshots. Every emission is the
// authoritative complete row set; consumers must replace derived state,
// never patch it. A slow consumer only ever sees the latest snapshot,
// intermediate ones are not replayed.
type Subscription[T any] struct {
	C      chan []T
	cancel func()
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.cancel()
}

// Hub fans full snapshots of one table out to its subscribers.
type Hub[T any] struct {
	table Table
	load  LoadFunc[T]
	mu    sync.RWMutex
	subs  map[*Subscription[T]]bool
}

// NewHub creates a hub for one table backed by a snapshot loader.
func NewHub[T any](table Table, load LoadFunc[T]) *Hub[T] {
	return &Hub[T]{
		table: table,
		load:  load,
		subs:  make(map[*Subscription[T]]bool),
	}
}

// Subscribe registers a subscriber and immediately delivers the live
// snapshot, so a consumer reconnecting after a disconnect always starts
// from full current state.
func (h *Hub[T]) Subscribe(ctx context.Context) (*Subscription[T], error) {
	rows, err := h.load(ctx)
	if err != nil {
		return nil, err
	}

	sub := &Subscription[T]{C: make(chan []T, 1)}
	var once sync.Once
	sub.cancel = func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
		})
	}

	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()

	sub.C <- rows
	return sub, nil
}

// SubscriberCount reports the number of active subscriptions.
func (h *Hub[T]) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Notify reloads the table and pushes the fresh snapshot to every
// subscriber. A subscriber that has not drained its previous snapshot gets
// only the latest one.
func (h *Hub[T]) Notify(ctx context.Context) {
	h.mu.RLock()
	empty := len(h.subs) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	rows, err := h.load(ctx)
	if err != nil {
		log.Printf("feed reload failed table=%s: %v", h.table, err)
		return
	}
	observability.IncFeedSnapshot(string(h.table))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.C <- rows:
		default:
			// drop the stale snapshot, keep the latest
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- rows:
			default:
			}
		}
	}
}
