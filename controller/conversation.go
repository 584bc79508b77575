// Package controller drives one open conversation from user input events:
// live moderation on every text change, the authoritative gate on send, and
// the store subscription feeding the message view.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chat-guard/domain"
	"chat-guard/errors"
	"chat-guard/moderation"
	"chat-guard/services"
	"chat-guard/store"
)

// Conversation owns the UI-facing state of a single open chat: the current
// input text and the blocked flag that disables send.
type Conversation struct {
	chatID string
	userID string
	peerID string

	engine *moderation.Engine
	syncer *services.Synchronizer
	store  store.IDocumentStore
	log    *slog.Logger

	mu      sync.Mutex
	text    string
	blocked bool
	unsub   func()
}

func NewConversation(chatID, userID, peerID string,
	engine *moderation.Engine, syncer *services.Synchronizer,
	st store.IDocumentStore, log *slog.Logger) *Conversation {
	c := &Conversation{
		chatID: chatID,
		userID: userID,
		peerID: peerID,
		engine: engine,
		syncer: syncer,
		store:  st,
		log:    log,
	}
	engine.OnVerdict(c.applyVerdict)
	return c
}

// OnTextChanged runs the instant local check and, when it comes back clean,
// arms the debounced remote recheck. Called on every keystroke.
func (c *Conversation) OnTextChanged(ctx context.Context, text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()

	verdict := c.engine.EvaluateLive(text)
	c.applyVerdict(verdict)
	if !verdict.Blocked {
		c.engine.ScheduleRemoteRecheck(ctx, text)
	}
}

// Send runs the authoritative moderation gate and, if clean, hands the text
// to the synchronizer. The input is cleared whatever the outcome: a blocked
// or failed attempt is consumed, not kept for retry.
func (c *Conversation) Send(ctx context.Context) error {
	c.mu.Lock()
	text := c.text
	c.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return nil
	}
	defer c.reset()

	if c.engine.EvaluateForSend(ctx, text) {
		return errors.ErrMessageBlocked
	}

	err := c.syncer.Send(ctx, services.SendCommand{
		ConversationID: c.chatID,
		SenderID:       c.userID,
		ReceiverID:     c.peerID,
		Text:           text,
	})
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// Watch subscribes fn to full conversation snapshots, delivered on every
// change until Close.
func (c *Conversation) Watch(fn func(domain.Conversation)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsub = c.store.Subscribe(store.ConversationPath(c.chatID), func(raw []byte) {
		var conversation domain.Conversation
		if err := json.Unmarshal(raw, &conversation); err != nil {
			c.log.Error("malformed conversation snapshot", "chat", c.chatID, "error", err)
			return
		}
		conversation.ID = domain.ConversationID(c.chatID)
		fn(conversation)
	})
}

// Close drops the store subscription and any pending recheck.
func (c *Conversation) Close() {
	c.engine.CancelPending()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
}

// Blocked reports the UI-facing blocked flag.
func (c *Conversation) Blocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocked
}

// Text returns the current input text.
func (c *Conversation) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Conversation) applyVerdict(v domain.Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocked = v.Blocked
}

func (c *Conversation) reset() {
	c.engine.CancelPending()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = ""
	c.blocked = false
}
