package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{
		"counter_orphans",
		"blocked_fetch",
		"async_dispatch",
		"rejected_then_cleared",
	} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/counter_orphans.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	// the golden file ignores run id and verdict
	result.RunID = "something-else"
	result.Pass = false
	require.NoError(t, AssertGolden(t, "counter_orphans", result))
}

func TestSnapshot_Canonical(t *testing.T) {
	result := NewResult("snap", "run-1")
	result.AddTrace(TraceEvent{Seq: 1, Kind: StepDispatch, Type: "A"})
	result.AddTrace(TraceEvent{Seq: 2, Kind: StepSettle})
	result.Recording.SessionID = "s"
	result.State = map[string]any{"z": 1, "a": "<b>"}

	data, err := NewSnapshot(result).Canonical()
	require.NoError(t, err)

	expected := `{"recording":{"actions":[],"blocked":[],"orphans":[],"pending":0,"promises":0,"rejected":[],"resolved":[],"session_id":"s"},` +
		`"scenario_name":"snap","state":{"a":"<b>","z":1},` +
		`"trace":[{"kind":"dispatch","seq":1,"type":"A"},{"kind":"settle","seq":2}]}`
	assert.Equal(t, expected, string(data))
}

func TestSnapshot_RejectsFunctions(t *testing.T) {
	result := NewResult("fn", "run-1")
	result.State = map[string]any{"f": func() {}}

	_, err := NewSnapshot(result).Canonical()
	require.Error(t, err)
}
