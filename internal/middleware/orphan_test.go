package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

func TestOrphanDetector_FirstDispatchAlwaysOrphan(t *testing.T) {
	o := NewOrphanDetector()
	s := engine.New(func(state, act any) any {
		n, _ := state.(int)
		return n + 1
	}, 0, engine.WithMiddleware(o))

	_, _ = s.Dispatch(action.New("CHANGES_STATE"))
	assert.Equal(t, []any{action.Action{"type": "CHANGES_STATE"}}, o.Orphans())
}

func TestOrphanDetector_UnchangedState(t *testing.T) {
	o := NewOrphanDetector()
	s := engine.New(nil, map[string]any{}, engine.WithMiddleware(o))

	_, _ = s.Dispatch(action.New("ACTION1"))
	_, _ = s.Dispatch(action.New("ACTION2"))

	assert.Equal(t, []any{action.Action{"type": "ACTION1"}, action.Action{"type": "ACTION2"}}, o.Orphans())
	assert.True(t, o.HasOrphans("ACTION1"))
	assert.True(t, o.HasOrphans(action.Action{"type": "ACTION2"}))
}

func TestOrphanDetector_LagsOneDispatch(t *testing.T) {
	o := NewOrphanDetector()
	s := engine.New(func(state, act any) any {
		n, _ := state.(int)
		if action.TypeOf(act) == "INCREMENT" {
			return n + 1
		}
		return n
	}, 0, engine.WithMiddleware(o))

	_, _ = s.Dispatch(action.New("NOOP"))      // first: orphan
	_, _ = s.Dispatch(action.New("INCREMENT")) // state unchanged since NOOP: orphan
	_, _ = s.Dispatch(action.New("NOOP"))      // INCREMENT changed state: not orphan
	_, _ = s.Dispatch(action.New("NOOP"))      // unchanged: orphan

	assert.Equal(t, []any{
		action.Action{"type": "NOOP"},
		action.Action{"type": "INCREMENT"},
		action.Action{"type": "NOOP"},
	}, o.Orphans())
}

func TestOrphanDetector_ClearKeepsCapturedState(t *testing.T) {
	o := NewOrphanDetector()
	s := engine.New(nil, "same", engine.WithMiddleware(o))

	_, _ = s.Dispatch(action.New("A"))
	assert.Equal(t, []any{}, o.ClearOrphans())
	assert.Empty(t, o.Orphans())

	_, _ = s.Dispatch(action.New("B"))
	assert.Equal(t, []any{action.Action{"type": "B"}}, o.Orphans())
}
