package cli

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mockstore/internal/config"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mockstore", cmd.Use)
	assert.Contains(t, cmd.Long, "golden files")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"test", "validate", "runs", "trace"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, config.DefaultPath, configFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	for _, name := range []string{"update", "filter", "golden-dir", "archive", "db"} {
		assert.NotNil(t, testCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "false", testCmd.Flags().Lookup("update").DefValue)
}

func TestTraceCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	traceCmd, _, err := cmd.Find([]string{"trace"})
	require.NoError(t, err)

	require.NotNil(t, traceCmd.Flags().Lookup("db"))
	require.NotNil(t, traceCmd.Flags().Lookup("run"))
	require.NotNil(t, traceCmd.Flags().Lookup("log"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := executeRoot(t, "--format", "invalid", "validate", "x.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootOptions_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mockstore.toml", `
[harness]
scenarios_dir = "flows"

[log]
level = "debug"
format = "json"

[extra]
thing = 1
`)

	opts := NewRootOptions()
	opts.ConfigPath = path
	stderr := &bytes.Buffer{}
	require.NoError(t, opts.load(stderr))

	assert.Equal(t, "flows", opts.Config.Harness.ScenariosDir)
	assert.Contains(t, stderr.String(), `warning: unknown config key: "extra.thing"`)

	require.NotNil(t, opts.Logger)
	assert.True(t, opts.Logger.Enabled(t.Context(), slog.LevelDebug))
	opts.Logger.Debug("hello")
	assert.Contains(t, stderr.String(), `"msg":"hello"`)
}

func TestRootOptions_VerboseForcesDebug(t *testing.T) {
	opts := NewRootOptions()
	opts.ConfigPath = filepath.Join(t.TempDir(), "missing.toml")
	opts.Verbose = true
	require.NoError(t, opts.load(&bytes.Buffer{}))

	assert.Equal(t, "warn", opts.Config.Log.Level)
	assert.True(t, opts.Logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestRootOptions_BadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mockstore.toml", "[log]\nlevel = \"loud\"\n")

	_, _, err := executeRoot(t, "validate", "x.yaml", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootOptions_LoggerWithoutRoot(t *testing.T) {
	opts := &RootOptions{}
	require.NotNil(t, opts.logger())
	assert.Zero(t, opts.settleTimeout())

	opts.Config.Harness.SettleTimeoutSeconds = 2
	assert.Equal(t, "2s", opts.settleTimeout().String())
}
