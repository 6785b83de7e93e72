package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/mockstore"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Index    int          // Position in the scenario's assertion list
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Executed steps for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "assertion[%d] failed: %s\n", e.Index, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFlow:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s", ev.Seq, ev.Kind)
			if ev.Type != nil {
				fmt.Fprintf(&buf, " %v", ev.Type)
			}
			if ev.Error != "" {
				fmt.Fprintf(&buf, " (error: %s)", ev.Error)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result and the
// store it was produced from. Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, st *mockstore.Store) []string {
	var failures []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertHasActions:
			err = assertHas(st.HasActions(a.Criteria...), true, mockstore.LogActions, a)
		case AssertHasBlocked:
			err = assertHas(st.HasBlocked(a.Criteria...), true, mockstore.LogBlocked, a)
		case AssertHasOrphans:
			err = assertHas(st.HasOrphans(a.Criteria...), true, mockstore.LogOrphans, a)
		case AssertNotHasActions:
			err = assertHas(st.HasActions(a.Criteria...), false, mockstore.LogActions, a)
		case AssertNotHasBlocked:
			err = assertHas(st.HasBlocked(a.Criteria...), false, mockstore.LogBlocked, a)
		case AssertNotHasOrphans:
			err = assertHas(st.HasOrphans(a.Criteria...), false, mockstore.LogOrphans, a)
		case AssertCount:
			err = assertCount(result.Recording, a)
		case AssertLogEquals:
			err = assertLogEquals(result.Recording, a)
		case AssertPromises:
			err = assertPromises(result.Recording, a)
		case AssertFinalState:
			err = assertFinalState(result.State, a)
		default:
			err = &AssertionError{Type: a.Type, Expected: "known assertion type", Actual: a.Type}
		}

		if ae, ok := err.(*AssertionError); ok {
			ae.Index = i
			ae.Trace = result.Trace
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	return failures
}

func assertHas(found, want bool, log string, a Assertion) error {
	if found == want {
		return nil
	}
	expected := fmt.Sprintf("%s log to contain %v", log, a.Criteria)
	actual := "at least one criterion unmatched"
	if !want {
		expected = fmt.Sprintf("%s log not to contain all of %v", log, a.Criteria)
		actual = "every criterion matched"
	}
	return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
}

func assertCount(rec mockstore.Recording, a Assertion) error {
	entries := rec.Logs()[a.Log]
	if len(entries) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d entries in %s", *a.Count, a.Log),
		Actual:   fmt.Sprintf("%d entries: %v", len(entries), entries),
	}
}

func assertLogEquals(rec mockstore.Recording, a Assertion) error {
	entries := rec.Logs()[a.Log]
	expected, _ := a.Expect.([]any)
	if len(entries) == len(expected) && valuesMatch(expected, entries, false) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s = %v", a.Log, expected),
		Actual:   fmt.Sprintf("%s = %v", a.Log, entries),
	}
}

func assertPromises(rec mockstore.Recording, a Assertion) error {
	checks := []struct {
		name string
		want *int
		got  int
	}{
		{"total", a.Total, rec.Promises},
		{"pending", a.Pending, rec.Pending},
		{"resolved", a.Resolved, len(rec.Resolved)},
		{"rejected", a.Rejected, len(rec.Rejected)},
	}
	for _, c := range checks {
		if c.want != nil && *c.want != c.got {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s promises = %d", c.name, *c.want),
				Actual:   fmt.Sprintf("%s promises = %d", c.name, c.got),
			}
		}
	}
	return nil
}

// assertFinalState checks the final state (or the value at Path) against
// Expect. Maps match as subsets: keys absent from Expect are ignored.
func assertFinalState(state any, a Assertion) error {
	actual := state
	where := "state"
	if a.Path != "" {
		v, ok := getPath(state, splitPath(a.Path))
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s = %v", a.Path, a.Expect),
				Actual:   fmt.Sprintf("%s not present", a.Path),
			}
		}
		actual = v
		where = a.Path
	}

	if valuesMatch(a.Expect, actual, true) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s = %v (type %T)", where, a.Expect, a.Expect),
		Actual:   fmt.Sprintf("%s = %v (type %T)", where, actual, actual),
	}
}

// valuesMatch compares an expected value parsed from YAML with a recorded
// one. Numbers compare by value across int widths and float64; records
// compare field by field, as a subset when subset is true.
func valuesMatch(expected, actual any, subset bool) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if want, ok := asMap(expected); ok {
		got, ok := asMap(actual)
		if !ok || (!subset && len(got) != len(want)) {
			return false
		}
		for k, wv := range want {
			gv, exists := got[k]
			if !exists || !valuesMatch(wv, gv, subset) {
				return false
			}
		}
		return true
	}

	if want, ok := expected.([]any); ok {
		got, ok := actual.([]any)
		if !ok || len(got) != len(want) {
			return false
		}
		for i := range want {
			if !valuesMatch(want[i], got[i], subset) {
				return false
			}
		}
		return true
	}

	if wn, ok := asNumber(expected); ok {
		gn, ok := asNumber(actual)
		return ok && wn == gn
	}

	return reflect.DeepEqual(expected, actual)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case action.Action:
		return m, true
	}
	return nil, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
