package mockstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

func TestRecording_Snapshot(t *testing.T) {
	s := withThunk()(map[string]any{}, nil, func(_, act any) bool {
		return action.TypeOf(act) != "A"
	})

	_, _ = s.Dispatch(action.New("A"))
	_, _ = s.Dispatch(asyncAction(s, "LATER", true))
	require.NoError(t, s.Settle(context.Background()))

	rec := s.Recording()
	assert.Equal(t, "s-1", rec.SessionID)
	assert.Equal(t, []any{action.Action{"type": "A"}}, rec.Blocked)
	assert.Equal(t, []any{action.Wrap(action.Action{"type": "A"})}, rec.Actions)
	assert.Equal(t, 1, rec.Promises)
	assert.Equal(t, 0, rec.Pending)
	assert.Equal(t, []string{"failed"}, rec.Rejected)
	assert.Empty(t, rec.Resolved)
}

func TestStore_BlockedThunkIsNotInvoked(t *testing.T) {
	s := withThunk()(map[string]any{}, nil, alwaysBlock)
	calls := 0

	_, err := s.Dispatch(engine.Thunk(func(engine.Dispatch, engine.GetState) any {
		calls++
		return nil
	}))
	require.NoError(t, err, "the wrapper is a plain action")
	assert.Equal(t, 0, calls)
	assert.Len(t, s.Blocked(), 1)
	assert.Empty(t, s.Promises())
}

func TestRecording_Canonical(t *testing.T) {
	s := newStore()(map[string]any{}, nil, nil)
	_, _ = s.Dispatch(action.New("B", "z", 1, "a", "x"))

	data, err := s.Recording().Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"actions":[{"a":"x","type":"B","z":1}],"blocked":[],"orphans":[{"a":"x","type":"B","z":1}],"pending":0,"promises":0,"rejected":[],"resolved":[],"session_id":"s-1"}`,
		string(data))
}

func TestRecording_Logs(t *testing.T) {
	rec := Recording{Rejected: []string{"boom"}}
	logs := rec.Logs()

	assert.Len(t, logs, len(LogNames))
	for _, name := range LogNames {
		assert.Contains(t, logs, name)
	}
	assert.Equal(t, []any{"boom"}, logs[LogRejected])
}
