package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

// UnknownUserName is the display name fallback when the counterpart profile
// cannot be resolved.
const UnknownUserName = "Unknown User"

var (
	ErrSelfMessage  = errors.New("cannot message yourself")
	ErrEmptyMessage = errors.New("message has no text or media")
)

const markReadTimeout = 5 * time.Second

// Service materializes enriched conversation lists from message snapshots
// and owns sending, history reads and read receipts.
type Service struct {
	messages repositories.MessageRepository
	profiles repositories.ProfileRepository
}

// NewService constructs the Service.
func NewService(messages repositories.MessageRepository, profiles repositories.ProfileRepository) *Service {
	return &Service{messages: messages, profiles: profiles}
}

// Send stores a direct message. Delivery into the receiver's views happens
// through feed redelivery; there is no optimistic local merge.
func (s *Service) Send(ctx context.Context, senderID, receiverID int64, text string, mediaURL *string) (models.Message, error) {
	if senderID == receiverID {
		return models.Message{}, ErrSelfMessage
	}
	if strings.TrimSpace(text) == "" && mediaURL == nil {
		return models.Message{}, ErrEmptyMessage
	}
	return s.messages.Send(ctx, senderID, receiverID, text, mediaURL)
}

// List loads the live snapshot once and materializes the enriched
// conversation list for userID.
func (s *Service) List(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	snapshot, err := s.messages.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListFromSnapshot(ctx, userID, snapshot, time.Now()), nil
}

// ListFromSnapshot aggregates one snapshot and enriches every summary
// concurrently with the counterpart profile and unread count. The call
// returns only once every summary has settled; a failed lookup degrades
// that summary alone and never aborts the batch. Canceling ctx cancels
// in-flight lookups.
func (s *Service) ListFromSnapshot(ctx context.Context, userID int64, snapshot []models.Message, now time.Time) []models.ConversationSummary {
	summaries := Aggregate(userID, snapshot, now)

	var wg sync.WaitGroup
	for i := range summaries {
		wg.Add(1)
		go func(summary *models.ConversationSummary) {
			defer wg.Done()
			s.enrich(ctx, userID, summary)
		}(&summaries[i])
	}
	wg.Wait()
	return summaries
}

func (s *Service) enrich(ctx context.Context, userID int64, summary *models.ConversationSummary) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, err := s.profiles.GetByID(ctx, summary.CounterpartID)
		if err != nil {
			summary.CounterpartName = UnknownUserName
			return
		}
		summary.CounterpartName = profile.FullName
	}()
	go func() {
		defer wg.Done()
		count, err := s.messages.UnreadCount(ctx, userID, summary.CounterpartID)
		if err != nil {
			summary.UnreadCount = 0
			return
		}
		summary.UnreadCount = count
	}()
	wg.Wait()
}

// History returns the ordered two-party history and flips the unread rows
// in the background; opening a conversation never waits for the receipt
// write, the next feed snapshot carries the updated rows.
func (s *Service) History(ctx context.Context, userID, counterpartID int64) ([]models.Message, error) {
	msgs, err := s.messages.ConversationHistory(ctx, userID, counterpartID)
	if err != nil {
		return nil, err
	}
	s.MarkReadAsync(userID, counterpartID)
	return msgs, nil
}

// MarkRead flips every unread message from counterpartID to userID in one
// bulk update.
func (s *Service) MarkRead(ctx context.Context, userID, counterpartID int64) error {
	return s.messages.MarkConversationRead(ctx, userID, counterpartID)
}

// MarkReadAsync is the fire-and-forget variant used when a conversation is
// opened.
func (s *Service) MarkReadAsync(userID, counterpartID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), markReadTimeout)
		defer cancel()
		if err := s.messages.MarkConversationRead(ctx, userID, counterpartID); err != nil {
			log.Printf("mark read failed user=%d counterpart=%d: %v", userID, counterpartID, err)
		}
	}()
}
