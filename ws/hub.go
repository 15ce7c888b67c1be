package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Simhateja17/whatsapp/metrics"
	"github.com/Simhateja17/whatsapp/models"
)

// MessageStore persists sent messages before they are echoed to the
// conversation's broadcast group. The stored message carries the
// server-assigned id and createdAt.
type MessageStore interface {
	SaveMessage(ctx context.Context, conversationID, authorID, content string) (*models.Message, error)
}

// PresenceStore records when a user was last connected.
type PresenceStore interface {
	SetLastSeen(ctx context.Context, userID string, t time.Time) error
}

// Publisher forwards frames to sibling server instances. May be nil for a
// single-instance deployment.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

type inbound struct {
	client *Client
	frame  Frame
}

// remoteEnvelope is the cross-instance wrapper around a frame. Room names
// the conversation group; an empty room means broadcast to everyone.
type remoteEnvelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room,omitempty"`
	Frame  json.RawMessage `json:"frame"`
}

// Hub owns every websocket connection of one server instance. All state
// mutation happens on the Run goroutine, so frame fan-out for a given
// conversation is serialized: clients observe messages in server-send order.
type Hub struct {
	store    MessageStore
	presence PresenceStore
	pub      Publisher
	log      zerolog.Logger

	// instanceID lets the redis subscriber skip this instance's own echo.
	instanceID string

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	remote     chan remoteEnvelope

	conns   map[*Client]bool            // every open socket
	clients map[string]map[*Client]bool // announced sockets by user id
	rooms   map[string]map[*Client]bool // sockets by joined conversation id
}

func NewHub(store MessageStore, presence PresenceStore, pub Publisher, log zerolog.Logger) *Hub {
	return &Hub{
		store:      store,
		presence:   presence,
		pub:        pub,
		log:        log,
		instanceID: uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound, 256),
		remote:     make(chan remoteEnvelope, 256),
		conns:      make(map[*Client]bool),
		clients:    make(map[string]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.conns[c] = true
			metrics.OpenSockets.Inc()
		case c := <-h.unregister:
			h.drop(c)
		case in := <-h.inbound:
			h.handleFrame(in.client, in.frame)
		case env := <-h.remote:
			h.handleRemote(env)
		}
	}
}

func (h *Hub) handleFrame(c *Client, frame Frame) {
	if !h.conns[c] {
		return
	}
	switch frame.Event {
	case EventUserConnected:
		var userID string
		if err := json.Unmarshal(frame.Data, &userID); err != nil || userID == "" {
			h.log.Warn().Str("event", frame.Event).Msg("malformed frame")
			return
		}
		h.announce(c, userID)
	case EventJoinConversation:
		var conversationID string
		if err := json.Unmarshal(frame.Data, &conversationID); err != nil || conversationID == "" {
			h.log.Warn().Str("event", frame.Event).Msg("malformed frame")
			return
		}
		h.joinRoom(c, conversationID)
	case EventLeaveConversation:
		h.leaveRoom(c)
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.ConversationID == "" {
			h.log.Warn().Str("event", frame.Event).Msg("malformed frame")
			return
		}
		h.deliverMessage(payload)
	default:
		h.log.Warn().Str("event", frame.Event).Msg("unknown event")
	}
}

// announce binds a socket to a user identity and broadcasts that the user
// is online. Clients re-announce after every reconnect, so this must be
// idempotent for sockets already bound.
func (h *Hub) announce(c *Client, userID string) {
	if c.userID == userID {
		h.broadcastStatus(StatusPayload{UserID: userID, IsOnline: true})
		return
	}
	if c.userID != "" {
		h.detachUser(c)
	}
	c.userID = userID
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]bool)
	}
	h.clients[userID][c] = true
	h.log.Info().Str("user_id", userID).Msg("client announced")
	h.broadcastStatus(StatusPayload{UserID: userID, IsOnline: true})
}

// joinRoom moves the socket into a conversation's broadcast group. A socket
// is in at most one group, so switching conversations implicitly leaves the
// previous one and cannot cross-deliver.
func (h *Hub) joinRoom(c *Client, conversationID string) {
	if c.room == conversationID {
		return
	}
	h.leaveRoom(c)
	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*Client]bool)
	}
	h.rooms[conversationID][c] = true
	c.room = conversationID
}

func (h *Hub) leaveRoom(c *Client) {
	if c.room == "" {
		return
	}
	if room, ok := h.rooms[c.room]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// deliverMessage persists the message and echoes it to the conversation
// group. The sender gets the echo too; clients do not render optimistically.
func (h *Hub) deliverMessage(payload SendMessagePayload) {
	msg, err := h.store.SaveMessage(context.Background(), payload.ConversationID, payload.AuthorID, payload.Content)
	if err != nil {
		h.log.Error().Err(err).Str("conversation_id", payload.ConversationID).Msg("failed to store message")
		return
	}
	raw, err := marshalFrame(EventNewMessage, msg)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal message frame")
		return
	}
	h.toRoom(payload.ConversationID, raw)
	h.publish(payload.ConversationID, raw)
}

func (h *Hub) handleRemote(env remoteEnvelope) {
	if env.Origin == h.instanceID {
		return
	}
	if env.Room != "" {
		h.toRoom(env.Room, env.Frame)
		return
	}
	h.toAll(env.Frame)
}

// drop tears a socket down: its disconnect is the implicit offline signal
// once it was the user's last open socket.
func (h *Hub) drop(c *Client) {
	if !h.conns[c] {
		return
	}
	delete(h.conns, c)
	metrics.OpenSockets.Dec()
	h.leaveRoom(c)
	h.detachUser(c)
	close(c.send)
}

func (h *Hub) detachUser(c *Client) {
	if c.userID == "" {
		return
	}
	userID := c.userID
	c.userID = ""
	set, ok := h.clients[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) > 0 {
		return
	}
	delete(h.clients, userID)

	lastSeen := time.Now().UTC()
	if err := h.presence.SetLastSeen(context.Background(), userID, lastSeen); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to persist last seen")
	}
	h.log.Info().Str("user_id", userID).Msg("client went offline")
	h.broadcastStatus(StatusPayload{
		UserID:   userID,
		IsOnline: false,
		LastSeen: lastSeen.Format(time.RFC3339),
	})
}

func (h *Hub) broadcastStatus(status StatusPayload) {
	raw, err := marshalFrame(EventUserStatusChanged, status)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal status frame")
		return
	}
	metrics.PresenceEvents.Inc()
	h.toAll(raw)
	h.publish("", raw)
}

func (h *Hub) toRoom(conversationID string, payload []byte) {
	for c := range h.rooms[conversationID] {
		h.send(c, payload)
		metrics.MessagesDelivered.Inc()
	}
}

func (h *Hub) toAll(payload []byte) {
	for c := range h.conns {
		h.send(c, payload)
	}
}

// send never blocks the hub loop; a client that cannot keep up is dropped.
func (h *Hub) send(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.log.Warn().Str("user_id", c.userID).Msg("dropping slow client")
		h.drop(c)
	}
}

func (h *Hub) publish(room string, frame []byte) {
	if h.pub == nil {
		return
	}
	env := remoteEnvelope{Origin: h.instanceID, Room: room, Frame: frame}
	raw, err := json.Marshal(env)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal envelope")
		return
	}
	if err := h.pub.Publish(context.Background(), raw); err != nil {
		h.log.Error().Err(err).Msg("failed to publish frame")
	}
}
