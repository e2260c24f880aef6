package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"stattact-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage keys, same names the browser client used.
const (
	KeyMatchHistory    = "matchHistory"
	KeySavedFormations = "savedFormations"
	KeyWorkspace       = "workspace"
)

// KVStore persists one JSON document per (owner, key).
type KVStore interface {
	Get(ctx context.Context, owner, key string) (string, bool, error)
	Set(ctx context.Context, owner, key, value string) error
}

// GormKVStore keeps values in the stored_values table.
type GormKVStore struct {
	DB *gorm.DB
}

func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{DB: db}
}

func (s *GormKVStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var row models.StoredValue
	err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND storage_key = ?", owner, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s for %s: %w", key, owner, err)
	}
	return row.Value, true, nil
}

func (s *GormKVStore) Set(ctx context.Context, owner, key, value string) error {
	row := models.StoredValue{OwnerID: owner, StorageKey: key, Value: value}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store %s for %s: %w", key, owner, err)
	}
	return nil
}

// MemoryKVStore is the process-local store used when no database is configured.
type MemoryKVStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string]map[string]string)}
}

func (s *MemoryKVStore) Get(_ context.Context, owner, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[owner][key]
	return v, ok, nil
}

func (s *MemoryKVStore) Set(_ context.Context, owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[owner] == nil {
		s.values[owner] = make(map[string]string)
	}
	s.values[owner][key] = value
	return nil
}
