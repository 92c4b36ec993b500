package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Send(ctx context.Context, senderID, receiverID int64, text string, mediaURL *string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, text, mediaURL)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Snapshot(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ConversationHistory(ctx context.Context, userID, counterpartID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, counterpartID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, userID, counterpartID int64) (int, error) {
	args := m.Called(ctx, userID, counterpartID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, userID, counterpartID int64) error {
	args := m.Called(ctx, userID, counterpartID)
	return args.Error(0)
}

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) CreateRequest(ctx context.Context, senderID, receiverID int64) (models.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	var req models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *FriendRepositoryMock) PendingBetween(ctx context.Context, senderID, receiverID int64) (bool, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) DeleteRequest(ctx context.Context, senderID, receiverID int64) error {
	args := m.Called(ctx, senderID, receiverID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) Accept(ctx context.Context, requestID, receiverID int64) (models.FriendRequest, error) {
	args := m.Called(ctx, requestID, receiverID)
	var req models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *FriendRepositoryMock) Decline(ctx context.Context, requestID, receiverID int64) error {
	args := m.Called(ctx, requestID, receiverID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) IncomingPending(ctx context.Context, receiverID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, receiverID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *FriendRepositoryMock) PurgeTerminalRequests(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *FriendRepositoryMock) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendRepositoryMock) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) SnapshotRequests(ctx context.Context) ([]models.FriendRequest, error) {
	args := m.Called(ctx)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *FriendRepositoryMock) SnapshotFriendships(ctx context.Context) ([]models.Friendship, error) {
	args := m.Called(ctx)
	var rows []models.Friendship
	if val := args.Get(0); val != nil {
		rows = val.([]models.Friendship)
	}
	return rows, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) GetByID(ctx context.Context, userID int64) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.FriendRepository = (*FriendRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
