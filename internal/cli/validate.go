package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/mockstore/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File     string               `json:"file"`
	Scenario string               `json:"scenario,omitempty"`
	Valid    bool                 `json:"valid"`
	Error    string               `json:"error,omitempty"`
	Schema   *harness.SchemaError `json:"schema,omitempty"` // set for schema violations
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario-file>...",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the embedded scenario schema and
the cross-field rules the schema cannot express.

Examples:
  mockstore validate scenarios/todo.yaml
  mockstore validate scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	invalid := 0

	for _, path := range files {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario file not found: %s", path))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read scenario file", err)
		}

		fv := validateFile(path, data)
		formatter.VerboseLog("validated %s (valid=%t)", path, fv.Valid)
		if !fv.Valid {
			invalid++
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if opts.Format != "json" {
		w := cmd.OutOrStdout()
		for _, fv := range result.Files {
			fmt.Fprintln(w, statusLine(fv.Valid, fv.File))
			if fv.Error != "" {
				fmt.Fprintf(w, "  %s\n", fv.Error)
			}
		}
	}

	if invalid > 0 {
		msg := fmt.Sprintf("%d of %d scenario file(s) invalid", invalid, len(files))
		if opts.Format == "json" {
			if err := formatter.ErrorWithData(ErrCodeInvalidScenario, msg, nil, result); err != nil {
				return err
			}
		}
		return NewExitError(ExitFailure, msg)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d scenario file(s) valid\n", len(files))
	return nil
}

// validateFile parses one scenario file, keeping schema violations
// structured for JSON output.
func validateFile(path string, data []byte) FileValidation {
	fv := FileValidation{File: path}

	scenario, err := harness.ParseScenario(path, data)
	if err != nil {
		fv.Error = err.Error()
		var schemaErr *harness.SchemaError
		if errors.As(err, &schemaErr) {
			fv.Schema = schemaErr
		}
		return fv
	}

	fv.Valid = true
	fv.Scenario = scenario.Name
	return fv
}
