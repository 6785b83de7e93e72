package action

import (
	"errors"
	"reflect"
)

// ErrorCode categorizes validation failures.
type ErrorCode string

const (
	// ErrCodeInvalidShape indicates the action is nil or not a plain record.
	ErrCodeInvalidShape ErrorCode = "INVALID_ACTION_SHAPE"

	// ErrCodeMissingType indicates the action has no defined "type" field.
	ErrCodeMissingType ErrorCode = "MISSING_TYPE_FIELD"
)

const (
	msgInvalidShape = "Actions must be plain objects. Use custom middleware for async actions."
	msgMissingType  = `Actions may not have an undefined "type" property. Have you misspelled a constant?`
)

// ValidationError is returned when an action fails validation.
// It aborts the dispatch that produced it.
type ValidationError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is the human-readable description.
	Message string

	// Kind describes the Go kind of the rejected value ("nil", "func", ...).
	Kind string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches validation errors by code so callers can compare against
// ErrInvalidActionShape and ErrMissingTypeField with errors.Is.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	// ErrInvalidActionShape is the sentinel for ErrCodeInvalidShape.
	ErrInvalidActionShape = &ValidationError{Code: ErrCodeInvalidShape, Message: msgInvalidShape}

	// ErrMissingTypeField is the sentinel for ErrCodeMissingType.
	ErrMissingTypeField = &ValidationError{Code: ErrCodeMissingType, Message: msgMissingType}
)

// Validate checks that v is a non-nil plain record with a defined type.
//
// A "type" key holding nil counts as undefined.
func Validate(v any) error {
	rec, ok := asRecord(v)
	if !ok {
		return &ValidationError{
			Code:    ErrCodeInvalidShape,
			Message: msgInvalidShape,
			Kind:    kindOf(v),
		}
	}
	if rec[TypeKey] == nil {
		return &ValidationError{
			Code:    ErrCodeMissingType,
			Message: msgMissingType,
			Kind:    "record",
		}
	}
	return nil
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Func:
		if rv.IsNil() {
			return "nil"
		}
	}
	return rv.Kind().String()
}
