package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mockstore/internal/action"
)

func TestAsThunk(t *testing.T) {
	named := Thunk(func(Dispatch, GetState) any { return nil })
	literal := func(Dispatch, GetState) any { return nil }
	var nilThunk Thunk

	_, ok := AsThunk(named)
	assert.True(t, ok)
	_, ok = AsThunk(literal)
	assert.True(t, ok)
	_, ok = AsThunk(nilThunk)
	assert.False(t, ok)
	_, ok = AsThunk(func() {})
	assert.False(t, ok)
	_, ok = AsThunk(action.New("X"))
	assert.False(t, ok)
}

func TestThunkMiddleware_InvokesThunk(t *testing.T) {
	s := New(counter, 0, WithMiddleware(ThunkMiddleware()))

	res, err := s.Dispatch(Thunk(func(dispatch Dispatch, getState GetState) any {
		_, _ = dispatch(action.New("INCREMENT"))
		_, _ = dispatch(action.New("INCREMENT"))
		return getState()
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, res, "thunk result is returned from Dispatch")
	assert.Equal(t, 2, s.GetState())
}

func TestThunkMiddleware_PassesActions(t *testing.T) {
	s := New(counter, 0, WithMiddleware(ThunkMiddleware()))

	_, err := s.Dispatch(action.New("INCREMENT"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.GetState())
}

func TestStore_ThunkWithoutMiddlewareIsInvalid(t *testing.T) {
	s := New(counter, 0)

	_, err := s.Dispatch(func(Dispatch, GetState) any { return nil })
	assert.ErrorIs(t, err, action.ErrInvalidActionShape)
}
