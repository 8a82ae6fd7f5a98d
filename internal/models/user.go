package models

import "time"

// User is created on first successful verification and refreshed on every later login.
type User struct {
	BaseModel

	Email       string    `gorm:"uniqueIndex;not null;size:320" json:"email"`
	LastLoginAt time.Time `json:"last_login_at"`
	Verified    bool      `gorm:"not null;default:false" json:"verified"`
}
