package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mockstore/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config and Logger are filled in by the root command before any
	// subcommand runs.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootOptions returns options with the default configuration.
func NewRootOptions() *RootOptions {
	return &RootOptions{
		Format:     "text",
		ConfigPath: config.DefaultPath,
		Config:     config.DefaultConfig(),
	}
}

// NewRootCommand creates the root command for the mockstore CLI.
func NewRootCommand() *cobra.Command {
	opts := NewRootOptions()

	cmd := &cobra.Command{
		Use:   "mockstore",
		Short: "mockstore - instrumented mock store for action flows",
		Long: `Run declarative action-flow scenarios against an instrumented mock store.

Scenarios dispatch actions through the block, promise, logger and orphan
middlewares and assert on what each of them recorded. Runs can be checked
against golden files and archived to SQLite for later inspection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.load(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath, "path to TOML config file")

	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// load reads the config file and installs the diagnostic logger on stderr.
func (o *RootOptions) load(stderr io.Writer) error {
	res, err := config.LoadFrom(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	o.Config = res.Config

	level := o.Config.Log.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if o.Config.Log.Format == "json" {
		o.Logger = slog.New(slog.NewJSONHandler(stderr, handlerOpts))
	} else {
		o.Logger = slog.New(slog.NewTextHandler(stderr, handlerOpts))
	}
	return nil
}

// logger returns the configured logger, or one that discards everything
// when a subcommand runs without the root command.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) settleTimeout() time.Duration {
	if o.Config.Harness.SettleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(o.Config.Harness.SettleTimeoutSeconds) * time.Second
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
