package harness

import (
	"fmt"
	"maps"
	"strings"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/engine"
)

// buildReducer turns a scenario's reducer table into an engine.Reducer over
// map[string]any. Updates copy every map on the written path, so earlier
// states held by the orphan detector or by assertions never change.
//
// A rule that cannot apply (wrong operand type, non-map on the path) leaves
// the state unchanged and is reported through onErr.
func buildReducer(rules map[string]ReducerRule, initial map[string]any, onErr func(error)) engine.Reducer {
	table := maps.Clone(rules)

	return func(state, act any) any {
		typ, ok := action.TypeOf(act).(string)
		if !ok {
			return state
		}
		rule, ok := table[typ]
		if !ok {
			return state
		}

		current, _ := state.(map[string]any)
		next, err := applyRule(rule, current, initial, act)
		if err != nil {
			onErr(fmt.Errorf("reducer %s: %w", typ, err))
			return state
		}
		return next
	}
}

func applyRule(rule ReducerRule, state, initial map[string]any, act any) (any, error) {
	operand := rule.Value
	if rule.From != "" {
		v, ok := action.Field(act, rule.From)
		if !ok {
			return nil, fmt.Errorf("action has no field %q", rule.From)
		}
		operand = v
	}

	path := splitPath(rule.Path)

	switch rule.Op {
	case OpReset:
		return cloneDeep(initial), nil

	case OpReplace:
		if len(path) == 0 {
			return operand, nil
		}
		return setPath(state, path, operand)

	case OpSet:
		return setPath(state, path, operand)

	case OpAppend:
		prev, _ := getPath(state, path)
		list, ok := prev.([]any)
		if prev != nil && !ok {
			return nil, fmt.Errorf("append: %s is %T, not a list", rule.Path, prev)
		}
		grown := make([]any, 0, len(list)+1)
		grown = append(grown, list...)
		grown = append(grown, operand)
		return setPath(state, path, grown)

	case OpIncrement, OpDecrement:
		prev, _ := getPath(state, path)
		n, err := toInt(prev, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", rule.Op, rule.Path, err)
		}
		by, err := toInt(operand, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: operand: %w", rule.Op, err)
		}
		if rule.Op == OpDecrement {
			by = -by
		}
		return setPath(state, path, n+by)
	}

	return nil, fmt.Errorf("unknown op %q", rule.Op)
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func getPath(state any, path []string) (any, bool) {
	current := state
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath returns a copy of state with path set to v. Missing maps along
// the path are created.
func setPath(state map[string]any, path []string, v any) (map[string]any, error) {
	out := maps.Clone(state)
	if out == nil {
		out = map[string]any{}
	}
	if len(path) == 1 {
		out[path[0]] = v
		return out, nil
	}

	var child map[string]any
	switch c := out[path[0]].(type) {
	case nil:
	case map[string]any:
		child = c
	default:
		return nil, fmt.Errorf("%s is %T, not a map", path[0], c)
	}

	updated, err := setPath(child, path[1:], v)
	if err != nil {
		return nil, fmt.Errorf("%s.%w", path[0], err)
	}
	out[path[0]] = updated
	return out, nil
}

func toInt(v any, def int) (int, error) {
	switch n := v.(type) {
	case nil:
		return def, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
		return 0, fmt.Errorf("%v is not a whole number", n)
	default:
		return 0, fmt.Errorf("%T is not a number", v)
	}
}

// cloneDeep copies maps and lists so the result shares nothing mutable
// with v.
func cloneDeep(v any) map[string]any {
	m, _ := deepCopy(v).(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}
