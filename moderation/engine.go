//go:generate go run go.uber.org/mock/mockgen -source=engine.go -destination=../mocks/mock_classifier.go -package=mocks
package moderation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"chat-guard/domain"

	"github.com/abadojack/whatlanggo"
)

// IClassifier is the slow optional moderation layer. Implementations return
// an error on any fault; the Engine owns the fail-open mapping.
type IClassifier interface {
	Classify(ctx context.Context, text string) (bool, error)
}

// Engine layers the lexical filter and the remote classifier into the three
// checks the conversation flow needs: the per-keystroke local check, the
// debounced remote recheck, and the authoritative gate before sending.
//
// Debouncing is a token state machine, not a bare timer handle: every
// schedule or cancellation bumps the token, and a remote result is only
// delivered while its token is still current. A stale in-flight HTTP call is
// allowed to finish; its result is simply discarded.
type Engine struct {
	filter     Filter
	classifier IClassifier
	delay      time.Duration
	log        *slog.Logger

	mu        sync.Mutex
	token     uint64
	timer     *time.Timer
	onVerdict func(domain.Verdict)
}

// NewEngine wires the two moderation layers together. delay is the quiet
// period before a scheduled remote recheck fires.
func NewEngine(filter Filter, classifier IClassifier, delay time.Duration, log *slog.Logger) *Engine {
	return &Engine{
		filter:     filter,
		classifier: classifier,
		delay:      delay,
		log:        log,
	}
}

// OnVerdict registers the listener receiving asynchronous recheck verdicts.
// This is the UI-facing blocked state.
func (e *Engine) OnVerdict(fn func(domain.Verdict)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onVerdict = fn
}

// EvaluateLive runs the lexical filter only. Synchronous, safe to call on
// every keystroke. A blocking result cancels any pending remote recheck so
// a stale async result cannot override a more recent local block.
func (e *Engine) EvaluateLive(text string) domain.Verdict {
	if strings.TrimSpace(text) == "" {
		e.CancelPending()
		return domain.Verdict{Blocked: false, Source: domain.SourceNone}
	}
	if e.localBlocked(text) {
		e.CancelPending()
		e.logBlocked(text, domain.SourceLocal)
		return domain.Verdict{Blocked: true, Source: domain.SourceLocal}
	}
	return domain.Verdict{Blocked: false, Source: domain.SourceLocal}
}

// ScheduleRemoteRecheck arms the debounced remote check for text. Only one
// check may be pending; scheduling replaces any previous one. When the filter
// already blocks the text the remote check is redundant and nothing is armed.
func (e *Engine) ScheduleRemoteRecheck(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" || e.localBlocked(text) {
		e.CancelPending()
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.token++
	token := e.token
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.delay, func() {
		e.runRecheck(ctx, token, text)
	})
}

// CancelPending discards any armed or in-flight recheck by invalidating its token.
func (e *Engine) CancelPending() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.token++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// EvaluateForSend is the authoritative gate before persisting: local filter
// first, then the remote classifier. Returns true when the text is blocked.
// Classifier faults resolve to not-blocked (fail-open), so this never errors.
func (e *Engine) EvaluateForSend(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if e.localBlocked(text) {
		e.logBlocked(text, domain.SourceLocal)
		return true
	}

	blocked, err := e.classifier.Classify(ctx, text)
	if err != nil {
		e.log.Warn("remote classification failed, failing open", "error", err)
		return false
	}
	if blocked {
		e.logBlocked(text, domain.SourceRemote)
	}
	return blocked
}

func (e *Engine) runRecheck(ctx context.Context, token uint64, text string) {
	if !e.tokenCurrent(token) {
		return
	}

	blocked, err := e.classifier.Classify(ctx, text)
	if err != nil {
		e.log.Warn("remote recheck failed, failing open", "error", err)
		blocked = false
	}

	e.mu.Lock()
	if e.token != token {
		// Superseded while the call was in flight.
		e.mu.Unlock()
		return
	}
	e.timer = nil
	fn := e.onVerdict
	e.mu.Unlock()

	if blocked {
		e.logBlocked(text, domain.SourceRemote)
	}
	if fn != nil {
		fn(domain.Verdict{Blocked: blocked, Source: domain.SourceRemote})
	}
}

func (e *Engine) tokenCurrent(token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token == token
}

// localBlocked shields callers from any filter fault: an unexpected panic
// resolves to not-blocked instead of bricking the input.
func (e *Engine) localBlocked(text string) (blocked bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("lexical filter fault, failing open", "panic", r)
			blocked = false
		}
	}()
	return e.filter.Check(text)
}

func (e *Engine) logBlocked(text string, source domain.VerdictSource) {
	info := whatlanggo.Detect(text)
	e.log.Warn("message blocked",
		"source", source.String(),
		"lang", info.Lang.Iso6391(),
		"length", len(text))
}
