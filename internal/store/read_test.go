package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mockstore/internal/mockstore"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteRun(ctx, createTestRun("r1", "counter", false))
	require.NoError(t, err)

	run, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, "r1", run.ID)
	assert.Equal(t, "counter", run.Scenario)
	assert.False(t, run.Pass)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, "session-r1", run.SessionID)
	assert.Equal(t, []string{"assertion[0] failed: count"}, run.Errors)

	// numbers come back as float64
	assert.Equal(t, map[string]any{"n": float64(1)}, run.State)
	assert.Equal(t, []any{map[string]any{"n": float64(1), "type": "ADD"}}, run.Log(mockstore.LogActions))
	assert.Equal(t, []any{"timeout"}, run.Log(mockstore.LogRejected))
	assert.Equal(t, []any{}, run.Log(mockstore.LogBlocked))
}

func TestReadRun_EntriesOrdered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := RunRecord{ID: "r1", Scenario: "order", Entries: []Entry{
		{Log: mockstore.LogOrphans, Seq: 1, Payload: "o1"},
		{Log: mockstore.LogActions, Seq: 1, Payload: "a1"},
		{Log: mockstore.LogOrphans, Seq: 0, Payload: "o0"},
		{Log: mockstore.LogActions, Seq: 0, Payload: "a0"},
	}}
	_, _, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Log: mockstore.LogActions, Seq: 0, Payload: "a0"},
		{Log: mockstore.LogActions, Seq: 1, Payload: "a1"},
		{Log: mockstore.LogOrphans, Seq: 0, Payload: "o0"},
		{Log: mockstore.LogOrphans, Seq: 1, Payload: "o1"},
	}, got.Entries)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []RunRecord{}, runs)

	for _, r := range []RunRecord{
		createTestRun("b", "counter", true),
		createTestRun("a", "fetch", false),
		createTestRun("c", "counter", false),
	} {
		_, _, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
	}

	runs, err = s.ListRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "a", runs[1].ID)
	assert.Equal(t, "c", runs[2].ID)
	assert.Nil(t, runs[0].Entries, "list omits entries")

	runs, err = s.ListRuns(ctx, "counter")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].Seq)
	assert.Equal(t, int64(3), runs[1].Seq)
}

func TestUnmarshalPayload_Invalid(t *testing.T) {
	_, err := unmarshalPayload("{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}
