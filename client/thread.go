package client

import (
	"context"
	"strings"
	"sync"
)

// Thread assembles one conversation's message sequence from a point-in-time
// history fetch plus live newMessage events. Live events that arrive before
// the history finishes loading are buffered and merged afterwards,
// de-duplicated by message id. Once a message is in the sequence its
// position never changes; later messages only append.
type Thread struct {
	mu             sync.Mutex
	conversationID string
	loaded         bool
	pending        []Message
	messages       []Message
	seen           map[string]struct{}
}

func NewThread(conversationID string) *Thread {
	return &Thread{
		conversationID: conversationID,
		seen:           make(map[string]struct{}),
	}
}

func (t *Thread) ConversationID() string { return t.conversationID }

// Apply folds one live event into the thread. Events for other
// conversations are discarded, which is what keeps a stale frame from the
// previous room out of the new thread during a switch.
func (t *Thread) Apply(msg Message) {
	if msg.ConversationID != t.conversationID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		t.pending = append(t.pending, msg)
		return
	}
	t.appendLocked(msg)
}

// LoadHistory installs the fetched history and merges events buffered
// while the fetch was in flight. Only the first call takes effect.
func (t *Thread) LoadHistory(history []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return
	}
	for _, msg := range history {
		t.appendLocked(msg)
	}
	for _, msg := range t.pending {
		t.appendLocked(msg)
	}
	t.pending = nil
	t.loaded = true
}

// Load fetches the history through the API and installs it.
func (t *Thread) Load(ctx context.Context, api *Client) error {
	history, err := api.Messages(ctx, t.conversationID)
	if err != nil {
		return err
	}
	t.LoadHistory(history)
	return nil
}

func (t *Thread) appendLocked(msg Message) {
	if _, dup := t.seen[msg.ID]; dup {
		return
	}
	t.seen[msg.ID] = struct{}{}
	t.messages = append(t.messages, msg)
}

// Messages returns the sequence in display order.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// ThreadItem is one rendered row: either a day separator or a message.
type ThreadItem struct {
	DaySeparator string
	Message      *Message
}

// Render produces the display list with a separator before the first
// message of each distinct calendar day, computed from createdAt.
func (t *Thread) Render() []ThreadItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	items := make([]ThreadItem, 0, len(t.messages))
	lastDay := ""
	for i := range t.messages {
		msg := t.messages[i]
		day := msg.CreatedAt.Format("2006-01-02")
		if day != lastDay {
			items = append(items, ThreadItem{DaySeparator: dayLabel(msg)})
			lastDay = day
		}
		items = append(items, ThreadItem{Message: &msg})
	}
	return items
}

func dayLabel(msg Message) string {
	return strings.ToUpper(msg.CreatedAt.Format("Jan 2, 2006"))
}
