package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Simhateja17/whatsapp/models"
)

type fakeMessageStore struct {
	mu sync.Mutex
	n  int
}

func (f *fakeMessageStore) SaveMessage(_ context.Context, conversationID, authorID, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return &models.Message{
		ID:             fmt.Sprintf("m-%d", f.n),
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

type fakePresenceStore struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func (f *fakePresenceStore) SetLastSeen(_ context.Context, userID string, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lastSeen == nil {
		f.lastSeen = make(map[string]time.Time)
	}
	f.lastSeen[userID] = t
	return nil
}

func newTestHub() (*Hub, *fakePresenceStore) {
	presence := &fakePresenceStore{}
	h := NewHub(&fakeMessageStore{}, presence, nil, zerolog.Nop())
	go h.Run()
	return h, presence
}

func newTestClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 32)}
	h.register <- c
	return c
}

func frameOf(t *testing.T, event string, data interface{}) Frame {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return Frame{Event: event, Data: raw}
}

func recvFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("received malformed frame: %v", err)
		}
		return f
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for a frame")
		return Frame{}
	}
}

func recvStatus(t *testing.T, c *Client) StatusPayload {
	t.Helper()
	f := recvFrame(t, c)
	if f.Event != EventUserStatusChanged {
		t.Fatalf("event = %q, want %q", f.Event, EventUserStatusChanged)
	}
	var st StatusPayload
	if err := json.Unmarshal(f.Data, &st); err != nil {
		t.Fatalf("malformed status payload: %v", err)
	}
	return st
}

func recvMessage(t *testing.T, c *Client) models.Message {
	t.Helper()
	f := recvFrame(t, c)
	if f.Event != EventNewMessage {
		t.Fatalf("event = %q, want %q", f.Event, EventNewMessage)
	}
	var m models.Message
	if err := json.Unmarshal(f.Data, &m); err != nil {
		t.Fatalf("malformed message payload: %v", err)
	}
	return m
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAnnounceBroadcastsOnlineToEveryone(t *testing.T) {
	h, _ := newTestHub()
	c1 := newTestClient(h)
	c2 := newTestClient(h)

	h.inbound <- inbound{client: c1, frame: frameOf(t, EventUserConnected, "u1")}

	for _, c := range []*Client{c1, c2} {
		st := recvStatus(t, c)
		if st.UserID != "u1" || !st.IsOnline || st.LastSeen != "" {
			t.Fatalf("status = %+v, want u1 online", st)
		}
	}
}

func TestLastDisconnectBroadcastsOfflineWithLastSeen(t *testing.T) {
	h, presence := newTestHub()
	c1 := newTestClient(h)
	watcher := newTestClient(h)

	h.inbound <- inbound{client: c1, frame: frameOf(t, EventUserConnected, "u1")}
	recvStatus(t, c1)
	recvStatus(t, watcher)

	h.unregister <- c1

	st := recvStatus(t, watcher)
	if st.UserID != "u1" || st.IsOnline {
		t.Fatalf("status = %+v, want u1 offline", st)
	}
	if _, err := time.Parse(time.RFC3339, st.LastSeen); err != nil {
		t.Fatalf("lastSeen = %q, want RFC3339", st.LastSeen)
	}
	presence.mu.Lock()
	_, recorded := presence.lastSeen["u1"]
	presence.mu.Unlock()
	if !recorded {
		t.Fatalf("last seen was not persisted")
	}
}

func TestUserStaysOnlineUntilLastSocketCloses(t *testing.T) {
	h, _ := newTestHub()
	c1 := newTestClient(h)
	c2 := newTestClient(h)
	watcher := newTestClient(h)

	h.inbound <- inbound{client: c1, frame: frameOf(t, EventUserConnected, "u1")}
	recvStatus(t, c1)
	recvStatus(t, c2)
	recvStatus(t, watcher)
	h.inbound <- inbound{client: c2, frame: frameOf(t, EventUserConnected, "u1")}
	recvStatus(t, c1)
	recvStatus(t, c2)
	recvStatus(t, watcher)

	// First socket closing is not an offline signal: another is open.
	h.unregister <- c1
	expectSilence(t, watcher)

	h.unregister <- c2
	st := recvStatus(t, watcher)
	if st.UserID != "u1" || st.IsOnline {
		t.Fatalf("status = %+v, want u1 offline", st)
	}
}

func TestMessagesReachOnlyTheirRoomInOrder(t *testing.T) {
	h, _ := newTestHub()
	a1 := newTestClient(h)
	a2 := newTestClient(h)
	b := newTestClient(h)

	h.inbound <- inbound{client: a1, frame: frameOf(t, EventJoinConversation, "conv-a")}
	h.inbound <- inbound{client: a2, frame: frameOf(t, EventJoinConversation, "conv-a")}
	h.inbound <- inbound{client: b, frame: frameOf(t, EventJoinConversation, "conv-b")}

	for i := 1; i <= 3; i++ {
		h.inbound <- inbound{client: a1, frame: frameOf(t, EventSendMessage, SendMessagePayload{
			ConversationID: "conv-a",
			AuthorID:       "u1",
			Content:        fmt.Sprintf("hello %d", i),
		})}
	}

	// Both room members, including the sender, get the echoes in send order.
	for _, c := range []*Client{a1, a2} {
		for i := 1; i <= 3; i++ {
			m := recvMessage(t, c)
			if m.ID != fmt.Sprintf("m-%d", i) {
				t.Fatalf("message %d has id %s, order broken", i, m.ID)
			}
			if m.ConversationID != "conv-a" || m.AuthorID != "u1" {
				t.Fatalf("message = %+v", m)
			}
		}
	}
	expectSilence(t, b)
}

func TestSwitchingRoomsLeavesThePreviousOne(t *testing.T) {
	h, _ := newTestHub()
	mover := newTestClient(h)
	stayer := newTestClient(h)

	h.inbound <- inbound{client: mover, frame: frameOf(t, EventJoinConversation, "conv-a")}
	h.inbound <- inbound{client: stayer, frame: frameOf(t, EventJoinConversation, "conv-a")}
	h.inbound <- inbound{client: mover, frame: frameOf(t, EventJoinConversation, "conv-b")}

	h.inbound <- inbound{client: stayer, frame: frameOf(t, EventSendMessage, SendMessagePayload{
		ConversationID: "conv-a", AuthorID: "u2", Content: "to a",
	})}

	if m := recvMessage(t, stayer); m.Content != "to a" {
		t.Fatalf("stayer got %+v", m)
	}
	// The mover left conv-a by joining conv-b; nothing crosses over.
	expectSilence(t, mover)

	h.inbound <- inbound{client: mover, frame: frameOf(t, EventSendMessage, SendMessagePayload{
		ConversationID: "conv-b", AuthorID: "u1", Content: "to b",
	})}
	if m := recvMessage(t, mover); m.Content != "to b" {
		t.Fatalf("mover got %+v", m)
	}
	expectSilence(t, stayer)
}

func TestExplicitLeaveStopsDelivery(t *testing.T) {
	h, _ := newTestHub()
	c := newTestClient(h)
	other := newTestClient(h)

	h.inbound <- inbound{client: c, frame: frameOf(t, EventJoinConversation, "conv-a")}
	h.inbound <- inbound{client: other, frame: frameOf(t, EventJoinConversation, "conv-a")}
	h.inbound <- inbound{client: c, frame: frameOf(t, EventLeaveConversation, nil)}

	h.inbound <- inbound{client: other, frame: frameOf(t, EventSendMessage, SendMessagePayload{
		ConversationID: "conv-a", AuthorID: "u2", Content: "after leave",
	})}

	recvMessage(t, other)
	expectSilence(t, c)
}

func TestRemoteEnvelopeSkipsOwnOrigin(t *testing.T) {
	h, _ := newTestHub()
	c := newTestClient(h)
	h.inbound <- inbound{client: c, frame: frameOf(t, EventJoinConversation, "conv-a")}

	payload, err := marshalFrame(EventNewMessage, models.Message{ID: "remote-1", ConversationID: "conv-a"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	h.remote <- remoteEnvelope{Origin: h.instanceID, Room: "conv-a", Frame: payload}
	expectSilence(t, c)

	h.remote <- remoteEnvelope{Origin: "other-instance", Room: "conv-a", Frame: payload}
	if m := recvMessage(t, c); m.ID != "remote-1" {
		t.Fatalf("message = %+v", m)
	}
}
