package engine

import (
	"errors"
	"fmt"
)

// DispatchError represents a misuse of the store detected during Dispatch.
//
// Validation failures of the action itself are reported by the action
// package (*action.ValidationError); DispatchError covers the store's own
// invariants.
type DispatchError struct {
	// Code identifies the error category.
	Code DispatchErrorCode

	// Message is a human-readable description.
	Message string

	// ActionType is the type of the action being dispatched, when known.
	ActionType any
}

// DispatchErrorCode categorizes dispatch errors.
type DispatchErrorCode string

const (
	// ErrCodeReducerDispatch indicates Dispatch was called while a reducer
	// was running.
	ErrCodeReducerDispatch DispatchErrorCode = "REDUCER_DISPATCH"

	// ErrCodeDepthExceeded indicates nested dispatches went past the
	// store's max depth.
	ErrCodeDepthExceeded DispatchErrorCode = "DISPATCH_DEPTH_EXCEEDED"
)

// ErrReducerDispatch is matched (via errors.Is) by every error returned when
// a reducer tries to dispatch.
var ErrReducerDispatch = &DispatchError{
	Code:    ErrCodeReducerDispatch,
	Message: "reducers may not dispatch actions",
}

// ErrDispatchDepth is matched (via errors.Is) by every error returned when
// nested dispatches exceed the store's max depth.
var ErrDispatchDepth = &DispatchError{
	Code:    ErrCodeDepthExceeded,
	Message: "nested dispatch depth exceeded",
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.ActionType != nil {
		return fmt.Sprintf("%s: %s (type=%v)", e.Code, e.Message, e.ActionType)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a DispatchError with the same code.
func (e *DispatchError) Is(target error) bool {
	de, ok := target.(*DispatchError)
	return ok && de.Code == e.Code
}

// IsReducerDispatch returns true if the error reports a dispatch from inside
// a reducer. Uses errors.As to handle wrapped errors.
func IsReducerDispatch(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeReducerDispatch
	}
	return false
}

func newReducerDispatchError(actionType any) *DispatchError {
	return &DispatchError{
		Code:       ErrCodeReducerDispatch,
		Message:    ErrReducerDispatch.Message,
		ActionType: actionType,
	}
}

func newDepthExceededError(actionType any, limit int) *DispatchError {
	return &DispatchError{
		Code:       ErrCodeDepthExceeded,
		Message:    fmt.Sprintf("%s (limit %d)", ErrDispatchDepth.Message, limit),
		ActionType: actionType,
	}
}
