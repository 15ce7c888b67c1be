package models

import "time"

// Message is an append-only chat message. ID and CreatedAt are assigned
// server-side; clients render in createdAt order.
type Message struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ConversationID string    `gorm:"type:varchar(36);index" json:"conversationId"`
	AuthorID       string    `gorm:"type:varchar(36);index" json:"authorId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}
