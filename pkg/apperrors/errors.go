// Package apperrors defines sentinel errors shared across layers.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrCatalogUnavailable    = errors.New("estimation catalog unavailable")
	ErrAINotConfigured       = errors.New("AI credentials not configured")
	ErrRealEffortNotRecorded = errors.New("real effort not recorded")
)

// ValidationError reports missing or invalid request fields.
// Matches errors.Is(err, ErrValidation).
type ValidationError struct {
	Fields []string
}

// ErrValidation is the sentinel all ValidationErrors match.
var ErrValidation = errors.New("validation failed")

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidation creates a ValidationError listing the offending fields.
func NewValidation(fields ...string) error {
	return &ValidationError{Fields: fields}
}
