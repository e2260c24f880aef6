package models

import "time"

// CheckoutSession records a hosted checkout page handed to a user.
type CheckoutSession struct {
	ID             string    `gorm:"primaryKey" json:"id"` // provider session id
	ExternalUserID string    `gorm:"index;not null" json:"external_user_id"`
	Email          string    `gorm:"not null" json:"email"`
	PriceID        string    `gorm:"not null" json:"price_id"`
	Plan           string    `gorm:"type:varchar(16)" json:"plan"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
