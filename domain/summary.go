package domain

// Summary is a per-user denormalized pointer to a conversation's latest state,
// used for list views. UpdatedAt is epoch milliseconds.
type Summary struct {
	ChatID      string `json:"chatId"`
	LastMessage string `json:"lastMessage"`
	ReceiverID  string `json:"receiverId"`
	UpdatedAt   int64  `json:"updatedAt"`
	IsSeen      bool   `json:"isSeen"`
}

// SummaryList is one user's conversation list document.
type SummaryList struct {
	Chats []Summary `json:"chats"`
}

// Upsert updates the entry for chatID in place, or appends a new one.
// It returns true when a new entry was created.
//
// Invariants enforced here:
//   - at most one entry per chatID in a list
//   - UpdatedAt never moves backwards on an existing entry
//
// On creation the entry carries the same seen rule as updates: the sender has
// seen their own message, the receiver has not.
func (l *SummaryList) Upsert(chatID, lastMessage, receiverID string, seen bool, at int64) bool {
	for i := range l.Chats {
		if l.Chats[i].ChatID != chatID {
			continue
		}
		if at < l.Chats[i].UpdatedAt {
			at = l.Chats[i].UpdatedAt
		}
		l.Chats[i].LastMessage = lastMessage
		l.Chats[i].IsSeen = seen
		l.Chats[i].UpdatedAt = at
		return false
	}

	l.Chats = append(l.Chats, Summary{
		ChatID:      chatID,
		LastMessage: lastMessage,
		ReceiverID:  receiverID,
		UpdatedAt:   at,
		IsSeen:      seen,
	})
	return true
}

// Entry returns the summary for chatID, if present.
func (l *SummaryList) Entry(chatID string) (Summary, bool) {
	for _, s := range l.Chats {
		if s.ChatID == chatID {
			return s, true
		}
	}
	return Summary{}, false
}
