package repository

import (
	"context"
	"errors"
	"time"

	"GolfSync/internal/interfaces"
	"GolfSync/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cacheRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCacheRepository local cache backed by the cache_entries table
func NewCacheRepository(db *gorm.DB) interfaces.LocalCache {
	return &cacheRepository{db: db, now: time.Now}
}

// Get returns the stored value; ok is false when the key was never written
func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry model.CacheEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

// Put overwrites the whole value of key in a single statement
func (r *cacheRepository) Put(ctx context.Context, key string, value []byte) error {
	entry := &model.CacheEntry{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: r.now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
}
