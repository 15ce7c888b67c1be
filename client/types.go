package client

import "time"

// Identity is the signed-in user, derived from the bearer token.
type Identity struct {
	UserID string
	Email  string
}

type User struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Email         string  `json:"email"`
	ProfilePicURL *string `json:"profilePicUrl"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	AuthorID       string    `json:"authorId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Conversation as returned by the list endpoint: Messages holds at most
// the latest message, for the preview line.
type Conversation struct {
	ID       string    `json:"id"`
	Members  []User    `json:"members"`
	Messages []Message `json:"messages"`
}

// StatusEvent is one userStatusChanged notification. LastSeen is RFC3339
// and only present for offline users.
type StatusEvent struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
	LastSeen string `json:"lastSeen,omitempty"`
}
