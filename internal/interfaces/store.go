package interfaces

import (
	"context"

	"GolfSync/internal/model"
)

// RemoteStore remote home of the single aggregate document
type RemoteStore interface {
	// GetName backend name
	GetName() string
	// SetToken stores the credential without validating it
	SetToken(token string)
	HasToken() bool
	// Read fetches and parses the document
	Read(ctx context.Context) (*model.Aggregate, error)
	// Replace overwrites the whole document; the last writer wins
	Replace(ctx context.Context, doc *model.Aggregate) error
	// ValidateToken authenticated probe, any failure reports false
	ValidateToken(ctx context.Context) bool
	// DocumentURL browser URL of the document, empty until it has been resolved
	DocumentURL() string
}

// LocalCache durable key/value mirror; values are overwritten as a whole
type LocalCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}
