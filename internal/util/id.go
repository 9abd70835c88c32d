package util

import "github.com/google/uuid"

// NewID generates a unique identifier string (UUID v4) for runs and records.
func NewID() string { return uuid.NewString() }
