package model

import "github.com/google/uuid"

// NewID time-ordered unique record id (UUIDv7: millisecond timestamp + random bits)
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
