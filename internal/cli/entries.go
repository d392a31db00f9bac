package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// NewEntriesCommand creates the entries command.
func NewEntriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entries <date>",
		Short: "List the entries of a day",
		Long: `List the entries recorded for a date (YYYY-MM-DD) and whether the
day is locked.

Example:
  evidence entries 2024-01-15
  evidence entries 2024-01-15 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			day, err := tr.GetEntries(commandContext(cmd), args[0])
			if err != nil {
				return failed("failed to list entries", err)
			}

			return rootOpts.formatter(cmd).Render(day, func(w io.Writer) error {
				state := "unlocked"
				if day.Locked {
					state = "locked"
				}
				fmt.Fprintf(w, "%s (%s)\n", args[0], state)
				writeEntries(w, day.Entries, false)
				return nil
			})
		},
	}
}

// ReplaceOptions holds flags for the replace command.
type ReplaceOptions struct {
	*RootOptions
	File string
}

// NewReplaceCommand creates the replace command.
func NewReplaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplaceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replace <date>",
		Short: "Replace every entry of a day",
		Long: `Replace every entry of a date with the entries read from a YAML or
JSON file (or stdin). The day's previous entries are deleted.

A locked day cannot be replaced.

Input is a list of entries:

  - tag: rent
    value: 1200
  - tag: food
    value: 50.5
    description: groceries

Example:
  evidence replace 2024-01-15 --file day.yaml
  echo '[{"tag":"rent","value":1200}]' | evidence replace 2024-01-15`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "-", "YAML or JSON entry list (- for stdin)")

	return cmd
}

func runReplace(opts *ReplaceOptions, date string, cmd *cobra.Command) error {
	entries, err := readEntryInputs(opts.File, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read entries", err)
	}

	tr, err := opts.openTracker(cmd)
	if err != nil {
		return err
	}
	defer tr.Close()

	if err := tr.ReplaceDay(commandContext(cmd), date, entries); err != nil {
		return failed("failed to replace day", err)
	}

	out := opts.formatter(cmd)
	out.VerboseLog("replaced %s with %d entries", date, len(entries))
	return out.Render(map[string]any{"date": date, "entries": len(entries)}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Saved %d entries for %s\n", len(entries), date)
		return err
	})
}

// readEntryInputs decodes an entry list from path, or from stdin when path
// is "-". JSON input is accepted as YAML.
func readEntryInputs(path string, stdin io.Reader) ([]domain.EntryInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	entries := []domain.EntryInput{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse entries: %w", err)
	}
	if entries == nil {
		entries = []domain.EntryInput{}
	}
	for i, e := range entries {
		if e.Tag == "" {
			return nil, fmt.Errorf("entry %d: tag is required", i)
		}
	}
	return entries, nil
}

// NewLockCommand creates the lock command.
func NewLockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <date>",
		Short: "Lock a day",
		Long: `Lock a date so its entries can no longer be replaced or edited.
Locking cannot be undone. Locking an already locked or empty day succeeds.

Example:
  evidence lock 2024-01-15`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			msg, err := tr.LockDay(commandContext(cmd), args[0])
			if err != nil {
				return failed("failed to lock day", err)
			}
			return rootOpts.formatter(cmd).Success(msg)
		},
	}
}

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Tag         string
	Value       float64
	Description string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit one entry",
		Long: `Change the tag, value and description of one entry. The entry's
date and lock state are kept. Entries of locked days cannot be edited.

Without --description the description is cleared.

Example:
  evidence update 42 --tag rent --value 1300
  evidence update 42 --tag food --value 12.5 --description lunch`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "entry tag (required)")
	_ = cmd.MarkFlagRequired("tag")
	cmd.Flags().Float64Var(&opts.Value, "value", 0, "entry value (required)")
	_ = cmd.MarkFlagRequired("value")
	cmd.Flags().StringVar(&opts.Description, "description", "", "entry description")

	return cmd
}

func runUpdate(opts *UpdateOptions, rawID string, cmd *cobra.Command) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid entry id %q", rawID), err)
	}

	var description *string
	if cmd.Flags().Changed("description") {
		description = domain.StrPtr(opts.Description)
	}

	tr, err := opts.openTracker(cmd)
	if err != nil {
		return err
	}
	defer tr.Close()

	if err := tr.UpdateEntry(commandContext(cmd), id, opts.Tag, opts.Value, description); err != nil {
		return failed("failed to update entry", err)
	}
	return opts.formatter(cmd).Success(fmt.Sprintf("Entry %d updated", id))
}

// NewDayStateCommand creates the day-state command.
func NewDayStateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "day-state <date>",
		Short:         "Show whether a day is empty, unlocked or locked",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			state, err := tr.DayState(commandContext(cmd), args[0])
			if err != nil {
				return failed("failed to read day state", err)
			}
			return rootOpts.formatter(cmd).Render(map[string]any{"date": args[0], "state": state}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %s\n", args[0], state)
				return err
			})
		},
	}
}

// writeEntries prints one line per entry.
func writeEntries(w io.Writer, entries []domain.Entry, withDate bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "  (no entries)")
		return
	}
	for _, e := range entries {
		var id int64
		if e.ID != nil {
			id = *e.ID
		}
		line := fmt.Sprintf("  #%-5d %-16s %14s", id, e.Tag, amount(e.Value))
		if withDate {
			line = fmt.Sprintf("  %s #%-5d %-16s %14s", e.Date, id, e.Tag, amount(e.Value))
		}
		if e.Description != nil && *e.Description != "" {
			line += "  " + *e.Description
		}
		if withDate && e.Locked {
			line += "  [locked]"
		}
		fmt.Fprintln(w, line)
	}
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
