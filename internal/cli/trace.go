package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mockstore/internal/action"
	"github.com/roach88/mockstore/internal/mockstore"
	"github.com/roach88/mockstore/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Log      string // optional - show only this log
}

// TraceLog is one recording log of an archived run.
type TraceLog struct {
	Name    string `json:"name"`
	Entries []any  `json:"entries"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID     string     `json:"run_id"`
	Scenario  string     `json:"scenario"`
	Pass      bool       `json:"pass"`
	SessionID string     `json:"session_id"`
	Logs      []TraceLog `json:"logs"`
	State     any        `json:"state"`
	Errors    []string   `json:"errors"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recordings of an archived run",
		Long: `Show what the mock store recorded during an archived run.

The output lists every recording log in order (actions, blocked, orphans,
resolved, rejected), the final state, and the run's failure messages.

Examples:
  mockstore trace --db ./mockstore.db --run 0192f1c4-...
  mockstore trace --db ./mockstore.db --run 0192f1c4-... --log orphans
  mockstore trace --run 0192f1c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite archive (default archive.db_path)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Log, "log", "", fmt.Sprintf("show only one log %v", mockstore.LogNames))

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.Log != "" && !slices.Contains(mockstore.LogNames, opts.Log) {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown log %q: must be one of %v", opts.Log, mockstore.LogNames))
	}

	st, err := openArchive(firstNonEmpty(opts.Database, opts.Config.Archive.DBPath))
	if err != nil {
		return err
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	run, err := st.ReadRun(cmd.Context(), opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		msg := fmt.Sprintf("run not found: %s", opts.RunID)
		if err := formatter.Error(ErrCodeRunNotFound, msg, nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	result := buildTraceResult(run, opts.Log)

	if opts.Format == "json" {
		return formatter.encode(CLIResponse{Status: "ok", Data: result, RunID: result.RunID})
	}
	return outputTraceText(cmd.OutOrStdout(), result)
}

// buildTraceResult groups a run's entries by log. Logs are listed in
// mockstore.LogNames order; empty logs are kept so the output shape does
// not depend on what was recorded.
func buildTraceResult(run store.RunRecord, only string) TraceResult {
	result := TraceResult{
		RunID:     run.ID,
		Scenario:  run.Scenario,
		Pass:      run.Pass,
		SessionID: run.SessionID,
		State:     run.State,
		Errors:    run.Errors,
		Logs:      []TraceLog{},
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}

	for _, name := range mockstore.LogNames {
		if only != "" && name != only {
			continue
		}
		result.Logs = append(result.Logs, TraceLog{Name: name, Entries: run.Log(name)})
	}
	return result
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult) error {
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintln(w, statusLine(result.Pass, result.Scenario))
	fmt.Fprintf(w, "Session: %s\n", result.SessionID)

	for _, log := range result.Logs {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "=== %s (%d) ===\n", log.Name, len(log.Entries))
		if len(log.Entries) == 0 {
			fmt.Fprintln(w, dimStyle.Render("  (empty)"))
			continue
		}
		for i, entry := range log.Entries {
			fmt.Fprintf(w, "  [%d] %s\n", i, formatValue(entry))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== State ===")
	fmt.Fprintf(w, "  %s\n", formatValue(result.State))

	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Errors ===")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return nil
}

// formatValue renders a value as canonical JSON, so map keys are sorted
// and the output is stable across runs.
func formatValue(v any) string {
	data, err := action.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
