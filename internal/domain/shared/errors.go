package shared

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable, front-end facing identifier of an error class
type ErrorCode string

const (
	CodePrerequisiteNotMet    ErrorCode = "PREREQUISITE_NOT_MET"
	CodeInsufficientResources ErrorCode = "INSUFFICIENT_RESOURCES"
	CodeQueueFull             ErrorCode = "QUEUE_FULL"
	CodeNotCancellable        ErrorCode = "NOT_CANCELLABLE"
	CodeNotFound              ErrorCode = "NOT_FOUND"
	CodeIOError               ErrorCode = "IO_ERROR"
	CodeValidation            ErrorCode = "VALIDATION"
	CodeInternal              ErrorCode = "INTERNAL"
)

// IsBusinessRule reports whether the code is a user-correctable rule violation.
// Business-rule errors never mutate state and are never retried.
func (c ErrorCode) IsBusinessRule() bool {
	switch c {
	case CodePrerequisiteNotMet, CodeInsufficientResources, CodeQueueFull, CodeNotCancellable:
		return true
	default:
		return false
	}
}

// Coded is implemented by every error that carries an ErrorCode
type Coded interface {
	error
	ErrorCode() ErrorCode
}

// CodeOf extracts the ErrorCode from err, looking through wrapping.
// Errors without a code are reported as CodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return CodeInternal
}

// DomainError is the base error type for all domain errors
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// ErrorCode returns the error's code
func (e *DomainError) ErrorCode() ErrorCode {
	return e.Code
}

func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NotFoundError reports an unknown player or job

type NotFoundError struct {
	*DomainError
	Entity string
	ID     string
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(CodeNotFound, fmt.Sprintf("%s not found: %s", entity, id)),
		Entity:      entity,
		ID:          id,
	}
}

// IOError wraps a persistence failure. It is the only error after which
// in-memory and persisted state may diverge; callers discard in-memory state.

type IOError struct {
	*DomainError
	Op  string
	Err error
}

func NewIOError(op string, err error) *IOError {
	return &IOError{
		DomainError: NewDomainError(CodeIOError, fmt.Sprintf("persistence %s failed: %v", op, err)),
		Op:          op,
		Err:         err,
	}
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrorCode returns CodeValidation
func (e *ValidationError) ErrorCode() ErrorCode {
	return CodeValidation
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
