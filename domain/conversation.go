package domain

// ConversationID identifies the canonical message log shared by two participants.
type ConversationID string

// Conversation is the append-only message log between two participants.
// The ID lives in the document path, not in the stored document itself.
type Conversation struct {
	ID       ConversationID `json:"-"`
	Messages []Message      `json:"messages"`
}

// Append adds a message at the end of the log.
// Existing entries are never mutated or reordered.
func (c *Conversation) Append(message Message) {
	c.Messages = append(c.Messages, message)
}
