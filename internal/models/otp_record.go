package models

import "time"

// OTPRecord holds the single outstanding one-time code for an email address. Issuing a new
// code overwrites the row; rows are never deleted.
type OTPRecord struct {
	BaseModel

	Email     string    `gorm:"uniqueIndex;not null;size:320" json:"email"`
	CodeHash  string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	Verified  bool      `gorm:"not null;default:false" json:"verified"`
}

// Usable reports whether the record can still be consumed at the given instant.
func (r *OTPRecord) Usable(now time.Time) bool {
	return r != nil && !r.Verified && now.Before(r.ExpiresAt)
}
