package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("permission denied")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("version conflict")
	ErrTransport      = errors.New("backend unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateEmail = errors.New("email already in use")
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ValidationError is returned before any storage call when input is malformed.
// errors.Is(err, ErrInvalidInput) reports true for it.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Field returns the message recorded for name, or "" when the field is valid.
func (e *ValidationError) Field(name string) string {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message
		}
	}
	return ""
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// TransportError wraps a failure to reach or talk to the backing store.
// errors.Is(err, ErrTransport) reports true for it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NewTransportError wraps err for op.
func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

// Error codes carried in API envelopes and workflow notices.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeTransport    = "transport_error"
	CodeInternal     = "internal_error"
)

// ErrorCode classifies err into one of the Code constants.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateEmail):
		return CodeConflict
	case errors.Is(err, ErrTransport):
		return CodeTransport
	default:
		return CodeInternal
	}
}
