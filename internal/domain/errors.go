// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is usually reached through a *ValidationError carrying field details.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidUpdate is returned when an update request names a field
	// that callers are not allowed to modify.
	ErrInvalidUpdate = errors.New("invalid updates")
)

// ValidationError collects field-level validation failures.
// It unwraps to ErrValidation so callers can test for it with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError with a single field failure.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add records a failure for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failure has been recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e as an error when it holds failures and nil otherwise.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	if !e.HasErrors() {
		return ErrValidation.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CheckUpdateKeys returns ErrInvalidUpdate if any key is not in allowed.
// The whole update is rejected; no subset of it is ever applied.
func CheckUpdateKeys(keys []string, allowed []string) error {
	permitted := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		permitted[k] = struct{}{}
	}
	var rejected []string
	for _, k := range keys {
		if _, ok := permitted[k]; !ok {
			rejected = append(rejected, k)
		}
	}
	if len(rejected) > 0 {
		sort.Strings(rejected)
		return fmt.Errorf("%w: %s", ErrInvalidUpdate, strings.Join(rejected, ", "))
	}
	return nil
}
