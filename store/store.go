//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks

// Package store exposes the key-document store the chat core writes to.
// Documents are addressed by path ("chats/{id}", "userchats/{userId}") and
// hold JSON objects. Every primitive is atomic for a single document only;
// nothing here coordinates writes across documents.
package store

// Document path prefixes. The viewer scans SummaryPrefix directly.
const (
	ConversationPrefix = "chats/"
	SummaryPrefix      = "userchats/"
)

// ConversationPath addresses the canonical message log of a conversation.
func ConversationPath(conversationID string) string {
	return ConversationPrefix + conversationID
}

// SummaryPath addresses one user's conversation-summary list.
func SummaryPath(userID string) string {
	return SummaryPrefix + userID
}

// IDocumentStore is the opaque document store contract.
type IDocumentStore interface {
	// Get decodes the document at path into out.
	// Returns errors.ErrDocumentNotFound when the document does not exist.
	Get(path string, out any) error

	// Set writes the full document at path, creating or replacing it.
	Set(path string, doc any) error

	// Update merges the top-level fields of patch into the document at path.
	// A missing document is created from the patch alone.
	Update(path string, patch map[string]any) error

	// AppendToArray appends element to the named array field, creating the
	// document and the field as needed. Append order is preserved.
	AppendToArray(path, field string, element any) error

	// Subscribe registers fn to receive the full raw document after every
	// change to path. The returned function removes the subscription.
	Subscribe(path string, fn func(raw []byte)) func()
}
