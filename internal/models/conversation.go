package models

// ConversationSummary is the per-counterpart projection of the message
// snapshot shown in the conversation list. CounterpartName and UnreadCount
// are filled by enrichment and degrade independently.
type ConversationSummary struct {
	CounterpartID   int64   `json:"counterpart_id"`
	CounterpartName string  `json:"counterpart_name"`
	LastMessage     Message `json:"last_message"`
	UnreadCount     int     `json:"unread_count"`
	AgeLabel        string  `json:"age_label"`
}

// ConversationEvent is pushed over the live websocket view.
type ConversationEvent struct {
	Type          string                `json:"type"`
	Conversations []ConversationSummary `json:"conversations"`
}
