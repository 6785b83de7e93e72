package action

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidActions(t *testing.T) {
	tests := []struct {
		name   string
		action any
	}{
		{"action type", Action{"type": "ADD_TODO"}},
		{"plain map", map[string]any{"type": "ADD_TODO", "text": "milk"}},
		{"non-string type", Action{"type": 42}},
		{"built with New", New("INCREMENT", "by", 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Validate(tt.action))
		})
	}
}

func TestValidate_InvalidShape(t *testing.T) {
	var nilAction Action
	tests := []struct {
		name   string
		action any
		kind   string
	}{
		{"nil", nil, "nil"},
		{"nil action", nilAction, "nil"},
		{"function", func() {}, "func"},
		{"slice", []any{Action{"type": "A"}}, "slice"},
		{"string", "ADD_TODO", "string"},
		{"struct", struct{ Type string }{"A"}, "struct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.action)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidActionShape))
			assert.False(t, errors.Is(err, ErrMissingTypeField))
			assert.Equal(t, "Actions must be plain objects. Use custom middleware for async actions.", err.Error())

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.kind, ve.Kind)
		})
	}
}

func TestValidate_MissingType(t *testing.T) {
	for _, a := range []any{
		Action{"foo": "BAR"},
		Action{"type": nil},
		map[string]any{},
	} {
		err := Validate(a)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingTypeField))
		assert.Equal(t, `Actions may not have an undefined "type" property. Have you misspelled a constant?`, err.Error())
	}
}

func TestValidate_WrappedErrorStillMatches(t *testing.T) {
	err := fmt.Errorf("dispatch: %w", Validate(nil))
	assert.True(t, errors.Is(err, ErrInvalidActionShape))
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("other")))
}

func TestWrapUnwrap(t *testing.T) {
	original := Action{"type": "DELETE"}
	wrapped := Wrap(original)

	assert.Equal(t, BlockedType, wrapped.Type())
	assert.NoError(t, Validate(wrapped))

	got, ok := Unwrap(wrapped)
	require.True(t, ok)
	assert.Equal(t, original, got)

	_, ok = Unwrap(original)
	assert.False(t, ok)
}

func TestTypeOfAndField(t *testing.T) {
	a := New("SET", "value", 3, 7)
	assert.Equal(t, "SET", TypeOf(a))
	assert.Nil(t, TypeOf("SET"))

	v, ok := Field(a, "value")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = Field(a, "missing")
	assert.False(t, ok)
	assert.True(t, IsPlain(a))
	assert.False(t, IsPlain(func() {}))
}
