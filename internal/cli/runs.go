package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mockstore/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Scenario string // optional - filter to one scenario
}

// RunSummary is one archived run without its entries.
type RunSummary struct {
	Seq       int64  `json:"seq"`
	ID        string `json:"id"`
	Scenario  string `json:"scenario"`
	Pass      bool   `json:"pass"`
	SessionID string `json:"session_id"`
	Errors    int    `json:"errors"`
}

// RunsResult holds the runs listing.
type RunsResult struct {
	Runs []RunSummary `json:"runs"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived scenario runs",
		Long: `List the scenario runs archived by "mockstore test --archive",
oldest first.

Examples:
  mockstore runs --db ./mockstore.db
  mockstore runs --db ./mockstore.db --scenario todo_add
  mockstore runs --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite archive (default archive.db_path)")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "only list runs of this scenario")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	st, err := openArchive(firstNonEmpty(opts.Database, opts.Config.Archive.DBPath))
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	result := RunsResult{Runs: make([]RunSummary, 0, len(runs))}
	for _, r := range runs {
		result.Runs = append(result.Runs, RunSummary{
			Seq:       r.Seq,
			ID:        r.ID,
			Scenario:  r.Scenario,
			Pass:      r.Pass,
			SessionID: r.SessionID,
			Errors:    len(r.Errors),
		})
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs archived.")
		return nil
	}
	for _, r := range result.Runs {
		fmt.Fprintf(w, "%s %s %s\n",
			statusLine(r.Pass, r.Scenario),
			dimStyle.Render(fmt.Sprintf("#%d", r.Seq)),
			r.ID,
		)
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(result.Runs))
	return nil
}

// openArchive opens an existing archive. store.Open would create a
// missing database, which is never what a read command wants.
func openArchive(path string) (*store.Store, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "no archive given: use --db or set archive.db_path")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
