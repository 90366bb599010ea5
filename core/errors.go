package core

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by memory operations invoked before
// Initialize.
var ErrNotInitialized = errors.New("memory provider not initialized")

// NotFoundError reports an operation against an unknown entry id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memory entry %s not found", e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
