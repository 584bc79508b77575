package controller_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chat-guard/controller"
	"chat-guard/domain"
	"chat-guard/errors"
	"chat-guard/moderation"
	"chat-guard/services"
	"chat-guard/store"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	mu      sync.Mutex
	calls   int
	blocked bool
}

func (f *fakeClassifier) Classify(context.Context, string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.blocked, nil
}

func (f *fakeClassifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	conversation *controller.Conversation
	store        *store.BadgerStore
	classifier   *fakeClassifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	filter, err := moderation.NewFilter(nil, log)
	require.NoError(t, err)

	classifier := &fakeClassifier{}
	engine := moderation.NewEngine(filter, classifier, 10*time.Millisecond, log)

	st := store.NewBadgerStore(db, log)
	syncer := services.NewSynchronizer(st, log)

	conversation := controller.NewConversation("alice_bob", "alice", "bob", engine, syncer, st, log)
	t.Cleanup(conversation.Close)

	return fixture{conversation: conversation, store: st, classifier: classifier}
}

func Test_clean_message_reaches_store_and_both_summaries(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.conversation.OnTextChanged(ctx, "hello there")
	req.False(f.conversation.Blocked())

	req.NoError(f.conversation.Send(ctx))
	req.Empty(f.conversation.Text(), "input is cleared after a successful send")

	var conversation domain.Conversation
	req.NoError(f.store.Get(store.ConversationPath("alice_bob"), &conversation))
	req.Len(conversation.Messages, 1)
	req.Equal("hello there", conversation.Messages[0].Text)

	for _, user := range []string{"alice", "bob"} {
		var list domain.SummaryList
		req.NoError(f.store.Get(store.SummaryPath(user), &list))
		req.Len(list.Chats, 1, "fresh summary entry for %s", user)
	}
}

func Test_offensive_message_is_rejected_before_any_write(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.conversation.OnTextChanged(ctx, "you are stupid")
	req.True(f.conversation.Blocked())

	err := f.conversation.Send(ctx)
	req.ErrorIs(err, errors.ErrMessageBlocked)
	req.Empty(f.conversation.Text(), "a blocked attempt is consumed")
	req.Zero(f.classifier.callCount(), "local block never reaches the classifier")

	var conversation domain.Conversation
	req.ErrorIs(f.store.Get(store.ConversationPath("alice_bob"), &conversation),
		errors.ErrDocumentNotFound, "nothing may be persisted")
}

func Test_second_send_updates_summaries_in_place(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.conversation.OnTextChanged(ctx, "first message")
	req.NoError(f.conversation.Send(ctx))
	f.conversation.OnTextChanged(ctx, "second message")
	req.NoError(f.conversation.Send(ctx))

	for _, user := range []string{"alice", "bob"} {
		var list domain.SummaryList
		req.NoError(f.store.Get(store.SummaryPath(user), &list))
		req.Len(list.Chats, 1, "no duplicate entry for %s", user)
		entry, ok := list.Entry("alice_bob")
		req.True(ok)
		req.Equal("second message", entry.LastMessage)
	}
}

func Test_empty_input_send_is_a_noop(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	f.conversation.OnTextChanged(ctx, "   ")
	req.NoError(f.conversation.Send(ctx))

	var conversation domain.Conversation
	req.ErrorIs(f.store.Get(store.ConversationPath("alice_bob"), &conversation),
		errors.ErrDocumentNotFound)
}

func Test_debounced_recheck_updates_blocked_flag(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.classifier.blocked = true

	f.conversation.OnTextChanged(context.Background(), "hello there")
	req.False(f.conversation.Blocked(), "local layer sees nothing wrong")

	req.Eventually(f.conversation.Blocked, time.Second, 5*time.Millisecond,
		"the remote verdict must surface on the blocked flag")
}

func Test_watch_delivers_conversation_snapshots(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctx := context.Background()

	snapshots := make(chan domain.Conversation, 4)
	f.conversation.Watch(func(c domain.Conversation) { snapshots <- c })

	f.conversation.OnTextChanged(ctx, "hello there")
	req.NoError(f.conversation.Send(ctx))

	select {
	case c := <-snapshots:
		req.Equal(domain.ConversationID("alice_bob"), c.ID)
		req.Len(c.Messages, 1)
		req.Equal("alice", c.Messages[0].SenderID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
}
