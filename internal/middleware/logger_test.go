package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

func TestActionLogger_RecordsInOrder(t *testing.T) {
	l := NewActionLogger()
	s := engine.New(nil, nil, engine.WithMiddleware(l))

	_, _ = s.Dispatch(action.New("FOO"))
	_, _ = s.Dispatch(action.New("BAR"))

	assert.Equal(t, []any{action.Action{"type": "FOO"}, action.Action{"type": "BAR"}}, l.Actions())
}

func TestActionLogger_InvalidAbortsDispatch(t *testing.T) {
	var reduced []any
	l := NewActionLogger()
	s := engine.New(recordingReducer(&reduced), nil, engine.WithMiddleware(l))

	_, err := s.Dispatch(action.Action{"foo": "BAR"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, action.ErrMissingTypeField))

	_, err = s.Dispatch(nil)
	assert.True(t, errors.Is(err, action.ErrInvalidActionShape))

	assert.Empty(t, l.Actions())
	assert.Empty(t, reduced)
}

func TestActionLogger_StopsLaterStages(t *testing.T) {
	l := NewActionLogger()
	o := NewOrphanDetector()
	s := engine.New(nil, nil, engine.WithMiddleware(l, o))

	_, err := s.Dispatch(42)
	require.Error(t, err)
	assert.Empty(t, o.Orphans())
}

func TestActionLogger_HasAndClear(t *testing.T) {
	l := NewActionLogger()
	s := engine.New(nil, nil, engine.WithMiddleware(l))

	_, _ = s.Dispatch(action.New("ACTION1"))
	_, _ = s.Dispatch(action.New("ACTION2", "payload", "PAYLODED"))
	_, _ = s.Dispatch(action.New("ACTION3"))

	assert.True(t, l.HasActions("ACTION1", "ACTION2", "ACTION3"))
	assert.True(t, l.HasActions(action.Action{"type": "ACTION2", "payload": "PAYLODED"}))
	assert.False(t, l.HasActions(action.Action{"type": "ACTION4", "payload": "PAYLODED"}))

	assert.Equal(t, []any{}, l.ClearActions())
	assert.Empty(t, l.Actions())
}
