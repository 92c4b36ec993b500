package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/models"
)

func TestListFromSnapshotEnrichesEverySummary(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	svc := NewService(messageRepo, profileRepo)

	now := time.Now()
	snapshot := []models.Message{
		msg(1, 200, 100, now.Add(-time.Minute)),
		msg(2, 100, 300, now.Add(-2*time.Minute)),
	}

	profileRepo.On("GetByID", mock.Anything, int64(200)).Return(models.Profile{ID: 200, FullName: "Bob"}, nil).Once()
	profileRepo.On("GetByID", mock.Anything, int64(300)).Return(models.Profile{ID: 300, FullName: "Carol"}, nil).Once()
	messageRepo.On("UnreadCount", mock.Anything, int64(100), int64(200)).Return(1, nil).Once()
	messageRepo.On("UnreadCount", mock.Anything, int64(100), int64(300)).Return(0, nil).Once()

	summaries := svc.ListFromSnapshot(context.Background(), 100, snapshot, now)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Bob", summaries[0].CounterpartName)
	assert.Equal(t, 1, summaries[0].UnreadCount)
	assert.Equal(t, "Carol", summaries[1].CounterpartName)
	assert.Equal(t, 0, summaries[1].UnreadCount)

	messageRepo.AssertExpectations(t)
	profileRepo.AssertExpectations(t)
}

func TestListFromSnapshotFallbacksDegradePerItem(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	profileRepo := new(mocks.ProfileRepositoryMock)
	svc := NewService(messageRepo, profileRepo)

	now := time.Now()
	snapshot := []models.Message{
		msg(1, 200, 100, now.Add(-time.Minute)),
		msg(2, 300, 100, now.Add(-2*time.Minute)),
	}

	// counterpart 200: both lookups fail, summary falls back
	profileRepo.On("GetByID", mock.Anything, int64(200)).Return(models.Profile{}, assert.AnError).Once()
	messageRepo.On("UnreadCount", mock.Anything, int64(100), int64(200)).Return(0, assert.AnError).Once()
	// counterpart 300: unaffected by 200's failures
	profileRepo.On("GetByID", mock.Anything, int64(300)).Return(models.Profile{ID: 300, FullName: "Carol"}, nil).Once()
	messageRepo.On("UnreadCount", mock.Anything, int64(100), int64(300)).Return(3, nil).Once()

	summaries := svc.ListFromSnapshot(context.Background(), 100, snapshot, now)
	require.Len(t, summaries, 2)

	assert.Equal(t, UnknownUserName, summaries[0].CounterpartName)
	assert.Equal(t, 0, summaries[0].UnreadCount)
	assert.Equal(t, "Carol", summaries[1].CounterpartName)
	assert.Equal(t, 3, summaries[1].UnreadCount)
}

func TestSendValidation(t *testing.T) {
	svc := NewService(new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock))

	_, err := svc.Send(context.Background(), 100, 100, "hi", nil)
	assert.ErrorIs(t, err, ErrSelfMessage)

	_, err = svc.Send(context.Background(), 100, 200, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSendMediaOnlyMessageAllowed(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewService(messageRepo, new(mocks.ProfileRepositoryMock))

	url := "https://cdn.example.com/pic.jpg"
	messageRepo.On("Send", mock.Anything, int64(100), int64(200), "", &url).Return(models.Message{ID: 7}, nil).Once()

	sent, err := svc.Send(context.Background(), 100, 200, "", &url)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sent.ID)
	messageRepo.AssertExpectations(t)
}

func TestHistoryFiresReadReceipt(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewService(messageRepo, new(mocks.ProfileRepositoryMock))

	history := []models.Message{msg(1, 200, 100, time.Now())}
	marked := make(chan struct{})

	messageRepo.On("ConversationHistory", mock.Anything, int64(100), int64(200)).Return(history, nil).Once()
	messageRepo.On("MarkConversationRead", mock.Anything, int64(100), int64(200)).Run(func(mock.Arguments) {
		close(marked)
	}).Return(nil).Once()

	msgs, err := svc.History(context.Background(), 100, 200)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	select {
	case <-marked:
	case <-time.After(time.Second):
		t.Fatal("read receipt was never issued")
	}
	messageRepo.AssertExpectations(t)
}

func TestMarkRead(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	svc := NewService(messageRepo, new(mocks.ProfileRepositoryMock))

	messageRepo.On("MarkConversationRead", mock.Anything, int64(100), int64(200)).Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), 100, 200))
	messageRepo.AssertExpectations(t)
}
