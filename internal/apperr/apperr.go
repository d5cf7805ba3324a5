// Package apperr defines the error taxonomy shared by the access layer, storage and transport.
//
// Every failure carries one of the sentinel errors below so callers can classify it with
// errors.Is without inspecting messages:
//   - ErrUnauthorized: no identity, or the identity may not perform the operation at all
//   - ErrForbidden: the identity is known but the record is protected for its role
//   - ErrNotFound: no matching record visible to the actor
//   - ErrValidation: malformed payload or query, detail in *ValidationError
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrIdentityUnavailable, ErrAggregationUnavailable, ErrStorageUnavailable: infrastructure
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrConflict               = errors.New("conflict")
	ErrIdentityUnavailable    = errors.New("identity unavailable")
	ErrAggregationUnavailable = errors.New("aggregation unavailable")
	ErrStorageUnavailable     = errors.New("storage unavailable")
)

// Unauthorized wraps ErrUnauthorized with a reason for logs. The reason is never sent to clients.
func Unauthorized(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, reason)
}

// Storage wraps a driver failure as ErrStorageUnavailable, keeping the cause in the chain.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// ValidationError carries field-level detail that is safe to expose.
type ValidationError struct {
	Fields map[string]string
}

// Invalid returns a ValidationError holding a single field message.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records msg for field, keeping the first message when a field fails twice.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns nil when no field failed, so builders can end with `return v.Err()`.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Aggregation wraps a failed grouped read as ErrAggregationUnavailable.
func Aggregation(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrAggregationUnavailable, err)
}
