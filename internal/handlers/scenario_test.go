package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/conversation"
	"messenger-service/internal/models"
	"messenger-service/internal/relationship"
	"messenger-service/internal/repositories"
)

// memStore is an in-memory stand-in for the three repositories, enough to
// run a whole friendship-then-messaging flow through the real services and
// handlers without a database.
type memStore struct {
	mu          sync.Mutex
	nextMsgID   int64
	nextReqID   int64
	messages    []models.Message
	requests    []models.FriendRequest
	friendships map[[2]int64]models.Friendship
	profiles    map[int64]models.Profile
}

func newMemStore() *memStore {
	return &memStore{
		nextMsgID:   1,
		nextReqID:   1,
		friendships: make(map[[2]int64]models.Friendship),
		profiles:    make(map[int64]models.Profile),
	}
}

func (s *memStore) Send(_ context.Context, senderID, receiverID int64, text string, mediaURL *string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := models.Message{
		ID:         s.nextMsgID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		MediaURL:   mediaURL,
		CreatedAt:  time.Now(),
	}
	s.nextMsgID++
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *memStore) Snapshot(_ context.Context) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (s *memStore) ConversationHistory(_ context.Context, userID, counterpartID int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.Involves(userID) && m.Counterpart(userID) == counterpartID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) UnreadCount(_ context.Context, userID, counterpartID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.messages {
		if m.ReceiverID == userID && m.SenderID == counterpartID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memStore) MarkConversationRead(_ context.Context, userID, counterpartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ReceiverID == userID && s.messages[i].SenderID == counterpartID {
			s.messages[i].IsRead = true
		}
	}
	return nil
}

func (s *memStore) CreateRequest(_ context.Context, senderID, receiverID int64) (models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == models.RequestPending {
			return models.FriendRequest{}, repositories.ErrDuplicateRequest
		}
	}
	req := models.FriendRequest{
		ID:         s.nextReqID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}
	s.nextReqID++
	s.requests = append(s.requests, req)
	return req, nil
}

func (s *memStore) PendingBetween(_ context.Context, senderID, receiverID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == models.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) DeleteRequest(_ context.Context, senderID, receiverID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.requests[:0]
	for _, r := range s.requests {
		if !(r.SenderID == senderID && r.ReceiverID == receiverID && r.Status == models.RequestPending) {
			kept = append(kept, r)
		}
	}
	s.requests = kept
	return nil
}

func (s *memStore) Accept(_ context.Context, requestID, receiverID int64) (models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		r := &s.requests[i]
		if r.ID == requestID && r.ReceiverID == receiverID && r.Status == models.RequestPending {
			r.Status = models.RequestAccepted
			now := time.Now()
			s.friendships[[2]int64{r.SenderID, r.ReceiverID}] = models.Friendship{UserID: r.SenderID, FriendID: r.ReceiverID, CreatedAt: now}
			s.friendships[[2]int64{r.ReceiverID, r.SenderID}] = models.Friendship{UserID: r.ReceiverID, FriendID: r.SenderID, CreatedAt: now}
			return *r, nil
		}
	}
	return models.FriendRequest{}, repositories.ErrRequestNotPending
}

func (s *memStore) Decline(_ context.Context, requestID, receiverID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.requests {
		r := &s.requests[i]
		if r.ID == requestID && r.ReceiverID == receiverID && r.Status == models.RequestPending {
			r.Status = models.RequestDeclined
		}
	}
	return nil
}

func (s *memStore) IncomingPending(_ context.Context, receiverID int64) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.ReceiverID == receiverID && r.Status == models.RequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) PurgeTerminalRequests(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.requests[:0]
	for _, r := range s.requests {
		if r.Status == models.RequestPending {
			kept = append(kept, r)
		}
	}
	s.requests = kept
	return nil
}

func (s *memStore) AreFriends(_ context.Context, userID, friendID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friendships[[2]int64{userID, friendID}]
	return ok, nil
}

func (s *memStore) DeleteFriendship(_ context.Context, userID, friendID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friendships, [2]int64{userID, friendID})
	delete(s.friendships, [2]int64{friendID, userID})
	return nil
}

func (s *memStore) SnapshotRequests(_ context.Context) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FriendRequest, len(s.requests))
	copy(out, s.requests)
	return out, nil
}

func (s *memStore) SnapshotFriendships(_ context.Context) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Friendship, 0, len(s.friendships))
	for _, f := range s.friendships {
		out = append(out, f)
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, userID int64) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return models.Profile{}, repositories.ErrProfileNotFound
	}
	return profile, nil
}

var (
	_ repositories.MessageRepository = (*memStore)(nil)
	_ repositories.FriendRepository  = (*memStore)(nil)
	_ repositories.ProfileRepository = (*memStore)(nil)
)

// scenarioRouter wires the real services and handlers over the memStore,
// authenticating every request as userID.
func scenarioRouter(store *memStore, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	conversationHandler := NewConversationHandler(conversation.NewService(store, store))
	friendHandler := NewFriendHandler(relationship.NewService(store), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})
	r.GET("/conversations", conversationHandler.List)
	r.GET("/conversations/:counterpart_id/messages", conversationHandler.History)
	r.POST("/conversations/:counterpart_id/read", conversationHandler.MarkRead)
	r.POST("/messages", conversationHandler.Send)
	r.GET("/friends/status/:user_id", friendHandler.Status)
	r.GET("/friends/requests", friendHandler.ListIncoming)
	r.POST("/friends/requests", friendHandler.SendRequest)
	r.POST("/friends/requests/:id/accept", friendHandler.AcceptRequest)
	return r
}

func do(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFriendshipThenMessagingFlow(t *testing.T) {
	store := newMemStore()
	store.profiles[1] = models.Profile{ID: 1, FullName: "Anna Kovacs"}
	store.profiles[2] = models.Profile{ID: 2, FullName: "Bela Weiss"}

	anna := scenarioRouter(store, 1)
	bela := scenarioRouter(store, 2)

	// Anna sends a friend request.
	rec := do(t, anna, http.MethodPost, "/friends/requests", `{"receiver_id":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sent struct {
		Request models.FriendRequest `json:"request"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sent))

	// Each side sees the pending request from its own direction.
	rec = do(t, anna, http.MethodGet, "/friends/status/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending_sent")

	rec = do(t, bela, http.MethodGet, "/friends/status/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending_received")

	// Bela accepts; both sides flip to friend at once.
	rec = do(t, bela, http.MethodPost, fmt.Sprintf("/friends/requests/%d/accept", sent.Request.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, anna, http.MethodGet, "/friends/status/2", "")
	assert.Contains(t, rec.Body.String(), `"friend"`)
	rec = do(t, bela, http.MethodGet, "/friends/status/1", "")
	assert.Contains(t, rec.Body.String(), `"friend"`)

	// Accepted request rows are gone from the table.
	reqs, err := store.SnapshotRequests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reqs)

	// Anna messages Bela.
	rec = do(t, anna, http.MethodPost, "/messages", `{"receiver_id":2,"text":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Bela's conversation list shows one unread conversation with Anna.
	rec = do(t, bela, http.MethodGet, "/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, int64(1), list.Conversations[0].CounterpartID)
	assert.Equal(t, "Anna Kovacs", list.Conversations[0].CounterpartName)
	assert.Equal(t, "hi", list.Conversations[0].LastMessage.Text)
	assert.Equal(t, 1, list.Conversations[0].UnreadCount)

	// Bela marks the conversation read; the unread count drops to zero.
	rec = do(t, bela, http.MethodPost, "/conversations/1/read", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, bela, http.MethodGet, "/conversations", "")
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, 0, list.Conversations[0].UnreadCount)
}
