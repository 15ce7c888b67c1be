package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Simhateja17/whatsapp/client"
)

// socketRecorder keeps the frames each server-side connection received, in
// arrival order, as "event payload" strings.
type socketRecorder struct {
	mu    sync.Mutex
	conns [][]string
}

func (r *socketRecorder) addConn() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = append(r.conns, nil)
	return len(r.conns) - 1
}

func (r *socketRecorder) record(i int, event string, data json.RawMessage) {
	var payload string
	json.Unmarshal(data, &payload)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[i] = append(r.conns[i], event+" "+payload)
}

func (r *socketRecorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.conns))
	for i, frames := range r.conns {
		out[i] = append([]string(nil), frames...)
	}
	return out
}

// newSocketTestServer accepts websocket connections and records their
// frames. dropAfter names an event that, once received on the first
// connection, makes the server close it, forcing the client to reconnect.
func newSocketTestServer(t *testing.T, dropAfter string) (*httptest.Server, *socketRecorder) {
	t.Helper()
	rec := &socketRecorder{}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		idx := rec.addConn()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}
			if json.Unmarshal(raw, &frame) != nil {
				continue
			}
			rec.record(idx, frame.Event, frame.Data)
			if idx == 0 && frame.Event == dropAfter {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func waitForFrames(t *testing.T, rec *socketRecorder, cond func([][]string) bool, what string) [][]string {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if got := rec.snapshot(); cond(got) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s: %v", what, rec.snapshot())
	return nil
}

func countEvent(frames []string, prefix string) int {
	n := 0
	for _, f := range frames {
		if strings.HasPrefix(f, prefix) {
			n++
		}
	}
	return n
}

func TestSocketReconnectReannouncesOnceAndRejoins(t *testing.T) {
	// The server drops the first connection once it has seen the join,
	// so the client has to reconnect mid-conversation.
	srv, rec := newSocketTestServer(t, "joinConversation")

	sock := client.NewSocket(client.SocketURL(srv.URL), client.Identity{UserID: "u1"}, client.SocketHandlers{})
	sock.Start()
	defer sock.Close()

	waitForFrames(t, rec, func(got [][]string) bool {
		return len(got) > 0 && countEvent(got[0], "userConnected") == 1
	}, "the first announce")
	if err := sock.JoinConversation("conv-a"); err != nil {
		t.Fatalf("JoinConversation failed: %v", err)
	}

	got := waitForFrames(t, rec, func(got [][]string) bool {
		return len(got) >= 2 && len(got[1]) >= 2
	}, "the reconnect replay")

	for i, frames := range got[:2] {
		if n := countEvent(frames, "userConnected"); n != 1 {
			t.Fatalf("connection %d announced %d times, want exactly 1: %v", i, n, frames)
		}
	}
	if got[0][0] != "userConnected u1" || got[0][1] != "joinConversation conv-a" {
		t.Fatalf("first connection frames = %v", got[0])
	}
	// The fresh connection re-announces first, then rejoins the room the
	// client was in when the old connection dropped.
	if got[1][0] != "userConnected u1" || got[1][1] != "joinConversation conv-a" {
		t.Fatalf("second connection frames = %v", got[1])
	}
}

func TestSocketReplayJoinsCurrentRoomNotASnapshot(t *testing.T) {
	srv, rec := newSocketTestServer(t, "")

	sock := client.NewSocket(client.SocketURL(srv.URL), client.Identity{UserID: "u1"}, client.SocketHandlers{})
	// The room chosen before the connection exists must be what the
	// connect-time replay joins.
	sock.JoinConversation("conv-b")
	sock.Start()
	defer sock.Close()

	got := waitForFrames(t, rec, func(got [][]string) bool {
		return len(got) > 0 && len(got[0]) >= 2
	}, "the connect replay")

	if got[0][0] != "userConnected u1" || got[0][1] != "joinConversation conv-b" {
		t.Fatalf("frames = %v, want announce then join of the current room", got[0])
	}
	if n := countEvent(got[0], "joinConversation"); n != 1 {
		t.Fatalf("joined %d times, want exactly 1: %v", n, got[0])
	}
}
