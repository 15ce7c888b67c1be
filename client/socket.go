package client

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventUserConnected     = "userConnected"
	eventJoinConversation  = "joinConversation"
	eventLeaveConversation = "leaveConversation"
	eventSendMessage       = "sendMessage"
	eventUserStatusChanged = "userStatusChanged"
	eventNewMessage        = "newMessage"

	socketWriteWait    = 10 * time.Second
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

type socketFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SocketHandlers receive events in arrival order, on the read goroutine.
type SocketHandlers struct {
	OnMessage func(Message)
	OnStatus  func(StatusEvent)
}

// Socket is the live channel. After every successful (re)connect it
// announces the identity as online exactly once and rejoins the current
// conversation, then dispatches incoming frames until the connection
// drops. Reconnection is transport-level with bounded backoff; there is no
// polling fallback.
type Socket struct {
	url      string
	identity Identity
	handlers SocketHandlers
	dialer   *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
	room string

	done      chan struct{}
	closeOnce sync.Once
}

func NewSocket(url string, identity Identity, handlers SocketHandlers) *Socket {
	return &Socket{
		url:      url,
		identity: identity,
		handlers: handlers,
		dialer:   websocket.DefaultDialer,
		done:     make(chan struct{}),
	}
}

// SocketURL derives the websocket endpoint from the API base URL.
func SocketURL(baseURL string) string {
	u := strings.TrimSuffix(baseURL, "/")
	if after, ok := strings.CutPrefix(u, "https://"); ok {
		u = "wss://" + after
	} else if after, ok := strings.CutPrefix(u, "http://"); ok {
		u = "ws://" + after
	}
	return u + "/ws"
}

// Start runs the connect loop in the background.
func (s *Socket) Start() {
	go s.run()
}

func (s *Socket) run() {
	delay := reconnectBaseDelay
	for {
		select {
		case <-s.done:
			return
		default:
		}

		conn, _, err := s.dialer.Dial(s.url, nil)
		if err != nil {
			select {
			case <-s.done:
				return
			case <-time.After(delay):
			}
			if delay *= 2; delay > reconnectMaxDelay {
				delay = reconnectMaxDelay
			}
			continue
		}
		delay = reconnectBaseDelay

		// Announce once per successful connect so the server never shows
		// a connected user as stale-offline after a reconnect. The room
		// replay holds the same lock as JoinConversation, so it always
		// joins the current room, never a snapshot a concurrent switch
		// has already superseded.
		s.mu.Lock()
		s.conn = conn
		s.emitLocked(eventUserConnected, s.identity.UserID)
		if s.room != "" {
			s.emitLocked(eventJoinConversation, s.room)
		}
		s.mu.Unlock()

		s.readLoop(conn)

		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
	}
}

func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame socketFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		switch frame.Event {
		case eventNewMessage:
			var msg Message
			if err := json.Unmarshal(frame.Data, &msg); err == nil && s.handlers.OnMessage != nil {
				s.handlers.OnMessage(msg)
			}
		case eventUserStatusChanged:
			var ev StatusEvent
			if err := json.Unmarshal(frame.Data, &ev); err == nil && s.handlers.OnStatus != nil {
				s.handlers.OnStatus(ev)
			}
		}
	}
}

// JoinConversation switches the broadcast group: the previous group is
// left before the new one is joined, so no frame from the old conversation
// is delivered into the new thread.
func (s *Socket) JoinConversation(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.room
	s.room = conversationID
	if prev == conversationID {
		return nil
	}
	if prev != "" {
		s.emitLocked(eventLeaveConversation, prev)
	}
	return s.emitLocked(eventJoinConversation, conversationID)
}

// LeaveConversation leaves the current group, if any.
func (s *Socket) LeaveConversation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.room
	s.room = ""
	if prev == "" {
		return nil
	}
	return s.emitLocked(eventLeaveConversation, prev)
}

// SendMessage emits the outgoing message. The thread renders it only when
// the server's echo arrives on the broadcast group.
func (s *Socket) SendMessage(conversationID, content string) error {
	return s.emit(eventSendMessage, map[string]string{
		"conversationId": conversationID,
		"authorId":       s.identity.UserID,
		"content":        content,
	})
}

func (s *Socket) emit(event string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emitLocked(event, data)
}

// emitLocked writes one frame; s.mu must be held.
func (s *Socket) emitLocked(event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(socketFrame{Event: event, Data: raw})
	if err != nil {
		return err
	}
	if s.conn == nil {
		return errors.New("socket not connected")
	}
	s.conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close tears the connection down synchronously and stops reconnecting.
// The server reads the close as the implicit going-offline signal.
func (s *Socket) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.mu.Unlock()
	})
}
