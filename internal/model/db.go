package model

import (
	"time"

	"gorm.io/datatypes"
)

// Local cache keys
const (
	CacheKeyData     = "golfData"     // serialized Aggregate
	CacheKeySettings = "golfSettings" // serialized UserSettings
)

// CacheEntry one key of the local cache; the value is overwritten as a whole
type CacheEntry struct {
	Key       string         `gorm:"column:key;type:varchar(64);primaryKey;comment:cache key"`
	Value     datatypes.JSON `gorm:"column:value;not null;comment:serialized value"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null;comment:last write time"`
}

func (CacheEntry) TableName() string { return "cache_entries" }

// UserSettings credentials kept in the local cache
type UserSettings struct {
	SitePassword string `json:"sitePassword"`
	GithubToken  string `json:"githubToken"`
}
