package domain

import "context"

// ConversationStore persists ordered conversation turns. The orchestration
// core treats persistence as a collaborator: it only reads a conversation
// before a run and appends the outcome after.
type ConversationStore interface {
	// Append adds messages to the end of a conversation, creating it if
	// needed.
	Append(ctx context.Context, conversationID string, messages ...Message) error
	// Messages returns a conversation's turns in insertion order.
	Messages(ctx context.Context, conversationID string) ([]Message, error)
	// Delete removes a conversation and all its turns.
	Delete(ctx context.Context, conversationID string) error
}
