package services

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotFound is returned for missing records and for records owned by
	// another user; callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores on a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmailNotFound   = errors.New("email doesnt exist")
	ErrWrongPassword   = errors.New("wrong password")

	// ErrMoodUnresolved means a stored journal references a mood that no longer exists.
	ErrMoodUnresolved = errors.New("journal mood could not be resolved")
)

// ValidationError collects per-field messages, in the shape clients already
// expect from the API: {"field": ["message", ...]}.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any message was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it holds messages, otherwise nil.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// Error returns the first message of the alphabetically first field, followed
// by a count of the remaining messages.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	total := 0
	for k, msgs := range e.Fields {
		keys = append(keys, k)
		total += len(msgs)
	}
	sort.Strings(keys)
	first := e.Fields[keys[0]][0]
	switch total {
	case 1:
		return first
	case 2:
		return first + " (and 1 more error)"
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, total-1)
	}
}
