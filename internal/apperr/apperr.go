// Package apperr classifies domain failures so transports can report them
// consistently. Domain packages declare their own sentinels on top of these kinds.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation marks missing or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrState marks an operation the entity's current state does not permit.
	ErrState = errors.New("operation not permitted in current state")
	// ErrConflict marks an invariant violated by a concurrent or duplicate write.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
)

// Error is a classified error with its own message.
type Error struct {
	kind error
	msg  string
}

// New returns an error of the given kind.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// ValidationError collects per-field problems.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

// NewValidation starts an empty ValidationError.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	v := NewValidation()
	v.Add(field, msg)
	return v
}

// Add records a problem; the first message per field wins.
func (v *ValidationError) Add(field, msg string) {
	if _, exists := v.Fields[field]; exists {
		return
	}
	v.Fields[field] = msg
}

// Err returns nil when no field was flagged.
func (v *ValidationError) Err() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+v.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Kind reports which of the four kinds err belongs to, or nil.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrState, ErrConflict, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
