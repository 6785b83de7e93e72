package engine

import (
	"maps"
	"reflect"
	"slices"
)

// Reducer computes the next state from the current state and an action.
// Reducers must be pure and must not dispatch.
type Reducer func(state, act any) any

// Identity returns the state unchanged.
func Identity(state, _ any) any {
	return state
}

// CombineReducers builds a reducer over map[string]any where each key is
// owned by one slice reducer.
//
// Each slice reducer receives its current slice (nil when absent) and must
// return a default for nil. Keys without a reducer are dropped. When no
// slice changed the previous map is returned as is.
func CombineReducers(reducers map[string]Reducer) Reducer {
	keys := slices.Sorted(maps.Keys(reducers))
	owned := maps.Clone(reducers)

	return func(state, act any) any {
		prev, _ := state.(map[string]any)

		changed := len(prev) != len(keys)
		next := make(map[string]any, len(keys))
		for _, key := range keys {
			before, had := prev[key]
			after := owned[key](before, act)
			next[key] = after
			if !had || !reflect.DeepEqual(before, after) {
				changed = true
			}
		}

		if !changed && prev != nil {
			return prev
		}
		return next
	}
}
