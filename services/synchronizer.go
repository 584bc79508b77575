// Package services holds the application services driving the chat core.
package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-guard/domain"
	"chat-guard/errors"
	"chat-guard/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var validate = validator.New()

// SendCommand carries one accepted message into the store.
// Text must already have passed the moderation gate.
type SendCommand struct {
	ConversationID string `validate:"required"`
	SenderID       string `validate:"required"`
	ReceiverID     string `validate:"required,nefield=SenderID"`
	Text           string
}

// UpsertResult reports the outcome of one participant's summary write.
type UpsertResult struct {
	UserID  string
	Created bool
	Err     error
}

// Synchronizer propagates an accepted message into the three denormalized
// documents: the conversation log plus both participants' summary lists.
//
// There is no cross-document transaction. The message append is durable on
// its own; the two summary upserts are best-effort, issued sender-first, and
// a failure of either does not roll back anything already written.
type Synchronizer struct {
	store store.IDocumentStore
	log   *slog.Logger
	now   func() time.Time
}

func NewSynchronizer(st store.IDocumentStore, log *slog.Logger) *Synchronizer {
	return &Synchronizer{store: st, log: log, now: time.Now}
}

// Send appends the message to the conversation and upserts both summaries.
// Empty or whitespace-only text is a silent no-op, not an error.
// Summary failures surface as one aggregate error wrapping ErrSummarySync;
// the caller cannot tell from it which of the writes went through.
func (s *Synchronizer) Send(ctx context.Context, cmd SendCommand) error {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil
	}
	if err := validate.StructCtx(ctx, cmd); err != nil {
		return fmt.Errorf("invalid send command: %w", err)
	}

	message := domain.Message{
		ID:        uuid.New(),
		SenderID:  cmd.SenderID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.AppendToArray(store.ConversationPath(cmd.ConversationID), "messages", message); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	var failures []error
	for _, result := range s.upsertSummaries(cmd, text) {
		if result.Err != nil {
			s.log.Error("summary upsert failed",
				"user", result.UserID,
				"chat", cmd.ConversationID,
				"error", result.Err)
			failures = append(failures, result.Err)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %w", errors.ErrSummarySync, stderrors.Join(failures...))
	}
	return nil
}

// upsertSummaries performs the best-effort dual upsert, sender first.
// Every participant gets a result so partial failure stays observable.
func (s *Synchronizer) upsertSummaries(cmd SendCommand, text string) []UpsertResult {
	at := s.now().UnixMilli()
	participants := []string{cmd.SenderID, cmd.ReceiverID}

	results := make([]UpsertResult, 0, len(participants))
	for _, participant := range participants {
		created, err := s.upsertSummary(participant, cmd, text, at)
		results = append(results, UpsertResult{UserID: participant, Created: created, Err: err})
	}
	return results
}

// upsertSummary does the read-modify-write of one participant's summary list.
// The whole list is replaced on write; there is no concurrency check, so a
// race between two rapid sends is last-write-wins by design.
func (s *Synchronizer) upsertSummary(participant string, cmd SendCommand, text string, at int64) (bool, error) {
	path := store.SummaryPath(participant)

	var list domain.SummaryList
	if err := s.store.Get(path, &list); err != nil && !stderrors.Is(err, errors.ErrDocumentNotFound) {
		return false, fmt.Errorf("fetch summaries for %s: %w", participant, err)
	}

	other := lo.Ternary(participant == cmd.SenderID, cmd.ReceiverID, cmd.SenderID)
	created := list.Upsert(cmd.ConversationID, text, other, participant == cmd.SenderID, at)

	if err := s.store.Set(path, list); err != nil {
		return created, fmt.Errorf("write summaries for %s: %w", participant, err)
	}
	return created, nil
}
