package models

import "time"

// User is an account created on first successful OTP sign-in.
type User struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username      string    `gorm:"type:varchar(64);not null" json:"username"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	ProfilePicURL *string   `gorm:"type:varchar(512)" json:"profilePicUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}
