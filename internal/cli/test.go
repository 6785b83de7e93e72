package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mockstore/internal/harness"
	"github.com/roach88/mockstore/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern on the file name)
	GoldenDir string
	Archive   bool
	Database  string
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	RunID  string   `json:"run_id,omitempty"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// Golden comparison outcomes.
const (
	goldenMatch   = "match"
	goldenUpdated = "updated"
	goldenMissing = "missing"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run scenario files",
		Long: `Run every scenario file in a directory.

Each scenario runs against a fresh mock store. A scenario passes when its
flow behaves as declared and all of its assertions hold. When a golden
file exists for the scenario its recording must also match it byte for
byte. The directory defaults to harness.scenarios_dir from the config.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, archive not writable, etc.)

Examples:
  mockstore test ./scenarios
  mockstore test ./scenarios --filter "todo_*"
  mockstore test ./scenarios --update
  mockstore test ./scenarios --archive --db runs.db
  mockstore test --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.Config.Harness.ScenariosDir
			if len(args) == 1 {
				dir = args[0]
			}
			return runTests(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern (default harness.filter)")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "golden file directory (default harness.golden_dir)")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "archive runs to SQLite (default archive.enabled)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive database path (default archive.db_path)")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if dir == "" {
		return NewExitError(ExitCommandError, "no scenarios directory given and harness.scenarios_dir is empty")
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	filter := firstNonEmpty(opts.Filter, opts.Config.Harness.Filter)
	scenarioFiles, err := findScenarioFiles(dir, filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd.OutOrStdout(), TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	var archive *store.Store
	if opts.Archive || opts.Config.Archive.Enabled {
		path := firstNonEmpty(opts.Database, opts.Config.Archive.DBPath)
		archive, err = store.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open archive", err)
		}
		defer archive.Close()
		opts.logger().Debug("archiving runs", "db", path)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd, archive)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if opts.Format != "json" {
			printScenarioResult(cmd.OutOrStdout(), scenResult)
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd.OutOrStdout(), result)
	}
	return outputTestText(cmd.OutOrStdout(), result)
}

// findScenarioFiles finds all YAML scenario files under dir, in walk order.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario loads, runs, golden-checks and archives one scenario file.
func runScenario(scenarioFile string, opts *TestOptions, cmd *cobra.Command, archive *store.Store) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	logger := opts.logger()
	result, err := harness.RunContext(cmd.Context(), scenario,
		harness.WithLogger(logger),
		harness.WithSettleTimeout(opts.settleTimeout()),
	)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	res := ScenarioResult{
		Name:   scenario.Name,
		RunID:  result.RunID,
		Pass:   result.Pass,
		Errors: result.Errors,
	}

	goldenDir := firstNonEmpty(opts.GoldenDir, opts.Config.Harness.GoldenDir)
	status, err := checkGolden(result, goldenFilePath(goldenDir, scenario.Name), opts.Update)
	res.Golden = status
	if err != nil {
		res.Pass = false
		res.Errors = append(res.Errors, err.Error())
	}

	if archive != nil {
		rec := store.NewRunRecord(result.RunID, scenario.Name, res.Pass, res.Errors, result.Recording, result.State)
		if _, _, err := archive.WriteRun(cmd.Context(), rec); err != nil {
			res.Pass = false
			res.Errors = append(res.Errors, fmt.Sprintf("archive: %v", err))
		} else {
			logger.Debug("run archived", "scenario", scenario.Name, "run_id", result.RunID)
		}
	}

	return res
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(goldenDir, name string) string {
	return filepath.Join(goldenDir, name+".golden")
}

// checkGolden compares the result's snapshot with the golden file, or
// rewrites the file when update is set. A missing golden file is not a
// failure: the scenario is judged by its assertions alone.
func checkGolden(result *harness.Result, goldenPath string, update bool) (string, error) {
	current, err := harness.NewSnapshot(result).Canonical()
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(goldenPath, current, 0644); err != nil {
			return "", fmt.Errorf("failed to write golden file: %w", err)
		}
		return goldenUpdated, nil
	}

	golden, err := os.ReadFile(goldenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return goldenMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read golden file: %w", err)
	}

	if !bytes.Equal(golden, current) {
		return "", errors.New("recording does not match golden file (run with --update to regenerate)")
	}
	return goldenMatch, nil
}

func printScenarioResult(w io.Writer, res ScenarioResult) {
	line := statusLine(res.Pass, res.Name)
	if res.Golden == goldenUpdated {
		line += dimStyle.Render(" (golden updated)")
	}
	fmt.Fprintln(w, line)
	for _, e := range res.Errors {
		for _, l := range strings.Split(e, "\n") {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(w io.Writer, result TestResult) error {
	formatter := &OutputFormatter{Format: "json", Writer: w}
	if result.Failed > 0 {
		msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if err := formatter.ErrorWithData(ErrCodeTestFailed, msg, nil, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return formatter.Success(result)
}

// outputTestText outputs the test summary as text.
func outputTestText(w io.Writer, result TestResult) error {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, passStyle.Render("✓ All scenarios passed"))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
