package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mockstore/internal/action"
)

func tracing(name string, trace *[]string) Middleware {
	return MiddlewareFunc(func(api API, act any, next Next) (any, error) {
		*trace = append(*trace, name+":before")
		res, err := next(act)
		*trace = append(*trace, name+":after")
		return res, err
	})
}

func TestPipeline_Order(t *testing.T) {
	var trace []string
	s := New(func(state, act any) any {
		trace = append(trace, "reducer")
		return state
	}, nil, WithMiddleware(tracing("a", &trace), tracing("b", &trace)), WithMiddleware(tracing("c", &trace)))
	trace = nil

	_, err := s.Dispatch(action.New("X"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a:before", "b:before", "c:before",
		"reducer",
		"c:after", "b:after", "a:after",
	}, trace)
}

func TestPipeline_ReplaceAction(t *testing.T) {
	var reduced []any
	rename := MiddlewareFunc(func(api API, act any, next Next) (any, error) {
		return next(action.New("RENAMED", "from", action.TypeOf(act)))
	})
	s := New(func(state, act any) any {
		reduced = append(reduced, act)
		return state
	}, nil, WithMiddleware(rename))
	reduced = nil

	_, err := s.Dispatch(action.New("ORIGINAL"))
	require.NoError(t, err)
	assert.Equal(t, []any{action.Action{"type": "RENAMED", "from": "ORIGINAL"}}, reduced)
}

func TestPipeline_ShortCircuitAndError(t *testing.T) {
	boom := errors.New("boom")
	stop := MiddlewareFunc(func(api API, act any, next Next) (any, error) {
		if action.TypeOf(act) == "FAIL" {
			return nil, fmt.Errorf("stop: %w", boom)
		}
		return "swallowed", nil
	})
	s := New(counter, 0, WithMiddleware(stop))

	res, err := s.Dispatch(action.New("INCREMENT"))
	require.NoError(t, err)
	assert.Equal(t, "swallowed", res)
	assert.Equal(t, 0, s.GetState())

	_, err = s.Dispatch(action.New("FAIL"))
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_ApiDispatchReentersChain(t *testing.T) {
	var trace []string
	echo := MiddlewareFunc(func(api API, act any, next Next) (any, error) {
		trace = append(trace, fmt.Sprint(action.TypeOf(act)))
		if action.TypeOf(act) == "PING" {
			if _, err := api.Dispatch(action.New("PONG")); err != nil {
				return nil, err
			}
		}
		return next(act)
	})
	s := New(nil, nil, WithMiddleware(echo))

	_, err := s.Dispatch(action.New("PING"))
	require.NoError(t, err)
	assert.Equal(t, []string{"PING", "PONG"}, trace)
}

func TestPipeline_NilStagesSkipped(t *testing.T) {
	s := New(counter, 0, WithMiddleware(nil, ThunkMiddleware(), nil))
	_, err := s.Dispatch(action.New("INCREMENT"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.GetState())
}
