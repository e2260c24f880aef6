package models

import "time"

// StoredValue is one key/value entry of an owner's persisted client state
// (match history, saved formations, workspace). Values are JSON documents.
type StoredValue struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OwnerID    string    `gorm:"uniqueIndex:idx_owner_storage_key;not null" json:"owner_id"`
	StorageKey string    `gorm:"uniqueIndex:idx_owner_storage_key;not null" json:"key"`
	Value      string    `gorm:"type:text;not null" json:"value"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
