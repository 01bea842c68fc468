package models

import "time"

// UserCredits is the analysis credit ledger entry for a user.
type UserCredits struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	AvailableCredits int       `gorm:"not null;default:0" json:"available_credits"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
