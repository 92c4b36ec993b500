package conversation

import (
	"fmt"
	"sort"
	"time"

	"messenger-service/internal/models"
)

// Aggregate projects a full message snapshot into one summary per
// counterpart for userID. Only the latest message of each conversation
// survives; ties on created_at resolve to the larger id. The result is
// ordered most-recent-first with the same tie-break, never by map
// iteration order.
func Aggregate(userID int64, snapshot []models.Message, now time.Time) []models.ConversationSummary {
	latest := make(map[int64]models.Message)
	for _, msg := range snapshot {
		if !msg.Involves(userID) || msg.SenderID == msg.ReceiverID {
			continue
		}
		other := msg.Counterpart(userID)
		cur, ok := latest[other]
		if !ok || newer(msg, cur) {
			latest[other] = msg
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(latest))
	for other, msg := range latest {
		summaries = append(summaries, models.ConversationSummary{
			CounterpartID: other,
			LastMessage:   msg,
			AgeLabel:      AgeLabel(now, msg.CreatedAt),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return newer(summaries[i].LastMessage, summaries[j].LastMessage)
	})
	return summaries
}

// AgeLabel buckets the elapsed time since a message into its largest
// nonzero unit.
func AgeLabel(now, createdAt time.Time) string {
	age := now.Sub(createdAt)
	switch {
	case age >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	case age >= time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age >= time.Minute:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	default:
		return "Just now"
	}
}

func newer(a, b models.Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
