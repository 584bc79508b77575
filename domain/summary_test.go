package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Upsert_creates_then_updates_in_place(t *testing.T) {
	req := require.New(t)
	var list SummaryList

	created := list.Upsert("alice_bob", "hi", "bob", true, 1000)
	req.True(created)
	req.Len(list.Chats, 1)
	req.Equal("bob", list.Chats[0].ReceiverID)
	req.True(list.Chats[0].IsSeen, "the sender has seen their own first message")

	created = list.Upsert("alice_bob", "how are you", "bob", true, 2000)
	req.False(created)
	req.Len(list.Chats, 1, "one entry per chat id")
	req.Equal("how are you", list.Chats[0].LastMessage)
	req.Equal(int64(2000), list.Chats[0].UpdatedAt)
}

func Test_Upsert_updated_at_is_monotonic(t *testing.T) {
	req := require.New(t)
	var list SummaryList

	list.Upsert("c1", "first", "bob", false, 5000)
	list.Upsert("c1", "second", "bob", false, 4000)

	entry, ok := list.Entry("c1")
	req.True(ok)
	req.Equal("second", entry.LastMessage)
	req.Equal(int64(5000), entry.UpdatedAt, "an earlier clock never moves the entry backwards")
}

func Test_Upsert_keeps_other_conversations_untouched(t *testing.T) {
	req := require.New(t)
	var list SummaryList

	list.Upsert("c1", "one", "bob", true, 1000)
	list.Upsert("c2", "two", "carol", true, 1000)
	list.Upsert("c1", "one again", "bob", true, 2000)

	req.Len(list.Chats, 2)
	other, ok := list.Entry("c2")
	req.True(ok)
	req.Equal("two", other.LastMessage)
}
