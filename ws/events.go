package ws

import "encoding/json"

// Wire events. Client-to-server frames carry the event name plus a data
// payload; server-to-client frames use the same envelope.
const (
	EventUserConnected     = "userConnected"
	EventJoinConversation  = "joinConversation"
	EventLeaveConversation = "leaveConversation"
	EventSendMessage       = "sendMessage"

	EventUserStatusChanged = "userStatusChanged"
	EventNewMessage        = "newMessage"
)

// Frame is the envelope for every websocket message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is the data of a sendMessage frame.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	AuthorID       string `json:"authorId"`
	Content        string `json:"content"`
}

// StatusPayload is the data of a userStatusChanged frame. LastSeen is
// RFC3339 and only present for offline users.
type StatusPayload struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
	LastSeen string `json:"lastSeen,omitempty"`
}

func marshalFrame(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
