// Package apperr defines the typed error taxonomy shared by handlers and
// repositories: validation, policy, not-found, and storage errors.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes a single failing field in a validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failing field of a malformed payload,
// not just the first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error. Returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// Validation creates a validation error with a single failing field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// PolicyError is returned when an action is rejected by access or
// lifecycle policy (illegal transition, cross-tenant reference,
// insufficient role).
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return e.Reason }

// Policyf creates a policy error with a formatted reason.
func Policyf(format string, args ...interface{}) *PolicyError {
	return &PolicyError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError is returned when a resource is absent or outside the
// caller's tenant. The two cases are deliberately indistinguishable so
// existence never leaks across tenants.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// NotFound creates a not-found error for the named resource.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// StorageError wraps a file-storage failure. Callers log it and degrade
// gracefully; it never aborts a committed database transaction.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage " + e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a storage error for the given operation.
func Storage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPolicy reports whether err is (or wraps) a PolicyError.
func IsPolicy(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
