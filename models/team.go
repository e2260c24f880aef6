package models

import "time"

// Team is a local snapshot of the backend's team list.
// Populated by the team sync worker.
type Team struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	SearchKey string    `gorm:"index;not null" json:"-"` // ASCII-folded, case-folded name
	Source    string    `gorm:"type:varchar(16);default:'backend'" json:"source"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
