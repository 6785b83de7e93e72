package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingScenario = `name: counter_inc
description: "One increment"
initial_state:
  count: 0
reducer:
  INCREMENT: { op: increment, path: count }
flow:
  - dispatch: { type: INCREMENT }
assertions:
  - type: final_state
    path: count
    expect: 1
`

const failingScenario = `name: counter_wrong
description: "Expects two increments after one"
initial_state:
  count: 0
reducer:
  INCREMENT: { op: increment, path: count }
flow:
  - dispatch: { type: INCREMENT }
assertions:
  - type: final_state
    path: count
    expect: 2
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// executeRoot runs the root command. Unless args name a config file, a
// config path that does not exist is used, so the test starts from the
// default configuration.
func executeRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	if !slices.Contains(args, "--config") {
		args = append(args, "--config", filepath.Join(t.TempDir(), "none.toml"))
	}
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// decodeResponse decodes a JSON CLIResponse whose data is of type T.
func decodeResponse[T any](t *testing.T, out string) (string, T, *CLIError) {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp.Status, resp.Data, resp.Error
}
