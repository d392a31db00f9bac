package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/evidence-tracker/internal/watcher"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions

	// IDGenerator allows overriding notification IDs (for testing).
	// If nil, UUIDv7 IDs are used.
	IDGenerator func() string

	// ready is called once the watch is registered (for testing).
	ready func()
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}
	return newWatchCommand(opts)
}

func newWatchCommand(opts *WatchOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report changes to tags.json until interrupted",
		Long: `Watch the configuration directory and print one line per change to
tags.json (one JSON or YAML document per change with --format).

Example:
  evidence watch
  evidence watch --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	tr, err := opts.openTracker(cmd)
	if err != nil {
		return err
	}
	defer tr.Close()

	// Use command's context if available (for testing), otherwise create one
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Debug("received signal, stopping watch", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var wopts []watcher.Option
	if opts.IDGenerator != nil {
		wopts = append(wopts, watcher.WithIDGenerator(opts.IDGenerator))
	}
	w, err := tr.WatchTags(ctx, wopts...)
	if err != nil {
		return failed("failed to watch tag configuration", err)
	}

	out := opts.formatter(cmd)
	out.VerboseLog("watching %s", w.Path())
	if opts.ready != nil {
		opts.ready()
	}

	for n := range w.Notifications() {
		err := out.Render(n, func(wr io.Writer) error {
			_, err := fmt.Fprintf(wr, "%s %s %s\n", n.Name, n.ID, n.Path)
			return err
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to write notification", err)
		}
	}
	return nil
}
