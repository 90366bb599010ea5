package util

import "github.com/google/uuid"

// NewID generates a globally unique identifier for entries and invocations.
func NewID() string {
	return uuid.NewString()
}
