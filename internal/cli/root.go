package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/evidence-tracker/internal/config"
	"github.com/roach88/evidence-tracker/internal/tracker"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "text" | "json" | "yaml"
	ConfigDir string // overrides EVIDENCE_CONFIG_DIR
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// NewRootCommand creates the root command for the evidence CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Failures are reported on stderr, or on stdout as a structured error
// response when --format is json or yaml.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	if reported(err) {
		return GetExitCode(err)
	}

	out := &OutputFormatter{Format: FormatText, Writer: stderr, Verbose: opts.Verbose}
	if opts.Format == FormatJSON || opts.Format == FormatYAML {
		out.Format = opts.Format
		out.Writer = stdout
	}
	_ = out.Failure(err)
	return GetExitCode(err)
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Evidence - daily entry tracker",
		Long: `Record dated, tagged amounts per day, lock finished days and
manage the tag taxonomy.

Entries live in entries.db and tags in tags.json, both under the
configuration directory (see config-path).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")

	// Entries
	cmd.AddCommand(NewEntriesCommand(opts))
	cmd.AddCommand(NewReplaceCommand(opts))
	cmd.AddCommand(NewLockCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDayStateCommand(opts))

	// Reports
	cmd.AddCommand(NewMonthsCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewMonthEntriesCommand(opts))
	cmd.AddCommand(NewGraphDatesCommand(opts))
	cmd.AddCommand(NewTotalsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	// Tags
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewConfigPathCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	// Scenarios
	cmd.AddCommand(NewTestCommand(opts))

	return cmd, opts
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

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig resolves the configuration and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.ConfigDir != "" {
		cfg.Dir = o.ConfigDir
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openTracker opens the tracker for one command. Callers must Close it.
func (o *RootOptions) openTracker(cmd *cobra.Command) (*tracker.Tracker, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	logger, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	slog.SetDefault(logger)

	tr, err := tracker.Open(cfg, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start", err)
	}
	return tr, nil
}
