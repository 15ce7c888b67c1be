package models

import "time"

// Conversation is a two-member chat. Members are stored in the
// conversation_members join table and never change after initiate.
type Conversation struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Members []User `gorm:"many2many:conversation_members" json:"members"`
}
