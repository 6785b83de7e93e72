package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/mockstore/internal/action"
)

// Snapshot is the deterministic part of a Result: everything except the
// run id and the pass/fail verdict.
type Snapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Recording    map[string]any
	State        any
}

// NewSnapshot extracts the snapshot of a result.
func NewSnapshot(result *Result) Snapshot {
	return Snapshot{
		ScenarioName: result.Scenario,
		Trace:        result.Trace,
		Recording:    result.Recording.Map(),
		State:        result.State,
	}
}

// toCanonicalMap converts a Snapshot to nested maps for canonical JSON.
func (s Snapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"seq":  ev.Seq,
			"kind": ev.Kind,
		}
		if ev.Type != nil {
			m["type"] = ev.Type
		}
		if ev.Error != "" {
			m["error"] = ev.Error
		}
		trace[i] = m
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
		"recording":     s.Recording,
		"state":         s.State,
	}
}

// Canonical encodes the snapshot as canonical JSON.
func (s Snapshot) Canonical() ([]byte, error) {
	return action.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Returns an error if
// the scenario could not be executed.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(result).Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
