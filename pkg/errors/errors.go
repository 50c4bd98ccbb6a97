package errors

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single field that failed validation
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Violations []FieldViolation
}

// NewValidationError creates a new validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Violations: []FieldViolation{{Field: field, Message: message}},
	}
}

// Add appends a violation
func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

// HasViolations reports whether any field failed validation
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// Fields returns the names of the offending fields in order
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field != "" {
			messages = append(messages, fmt.Sprintf("%s: %s", v.Field, v.Message))
		} else {
			messages = append(messages, v.Message)
		}
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// AlreadyExistsError represents a unique key collision
type AlreadyExistsError struct {
	Resource string
	Message  string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// InternalError wraps an unexpected store or driver failure with the operation that failed
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err was caused by the caller's input
// (validation failure or unique key collision).
func IsClientError(err error) bool {
	var ve *ValidationError
	var ae *AlreadyExistsError
	return As(err, &ve) || As(err, &ae)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return As(err, &nf)
}
