package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// NewMonthsCommand creates the months command.
func NewMonthsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "months",
		Short:         "List months with entries, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			months, err := tr.Months(commandContext(cmd))
			if err != nil {
				return failed("failed to list months", err)
			}
			return rootOpts.formatter(cmd).Render(months, writeLines(months))
		},
	}
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <month>",
		Short: "Show per-tag totals for a month",
		Long: `Sum the values of a month (YYYY-MM) by tag, with the grand total.

Example:
  evidence summary 2024-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			summary, err := tr.MonthlySummary(commandContext(cmd), args[0])
			if err != nil {
				return failed("failed to summarize month", err)
			}
			return rootOpts.formatter(cmd).Render(summary, func(w io.Writer) error {
				fmt.Fprintf(w, "Summary for %s\n", args[0])
				for _, t := range summary.Tags {
					fmt.Fprintf(w, "  %-16s %14s\n", t.Tag, amount(t.Total))
				}
				fmt.Fprintf(w, "  %-16s %14s\n", "Total", amount(summary.Total))
				return nil
			})
		},
	}
}

// NewMonthEntriesCommand creates the month-entries command.
func NewMonthEntriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "month-entries <month>",
		Short:         "List every entry of a month by date",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			entries, err := tr.MonthlyEntries(commandContext(cmd), args[0])
			if err != nil {
				return failed("failed to list month entries", err)
			}
			return rootOpts.formatter(cmd).Render(entries, func(w io.Writer) error {
				fmt.Fprintf(w, "Entries for %s\n", args[0])
				writeEntries(w, entries, true)
				return nil
			})
		},
	}
}

// NewGraphDatesCommand creates the graph-dates command.
func NewGraphDatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "graph-dates",
		Short:         "List every date with entries, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			dates, err := tr.GraphDates(commandContext(cmd))
			if err != nil {
				return failed("failed to list dates", err)
			}
			return rootOpts.formatter(cmd).Render(dates, writeLines(dates))
		},
	}
}

// NewTotalsCommand creates the totals command.
func NewTotalsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "totals <month>",
		Short:         "Show the tag to total mapping of a month",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := rootOpts.openTracker(cmd)
			if err != nil {
				return err
			}
			defer tr.Close()

			totals, err := tr.MonthlyTotals(commandContext(cmd), args[0])
			if err != nil {
				return failed("failed to total month", err)
			}
			return rootOpts.formatter(cmd).Render(totals, func(w io.Writer) error {
				for _, tag := range sortedKeys(totals) {
					fmt.Fprintf(w, "%s\t%s\n", tag, amount(totals[tag]))
				}
				return nil
			})
		},
	}
}

// writeLines renders one value per line.
func writeLines(lines []string) func(io.Writer) error {
	return func(w io.Writer) error {
		for _, l := range lines {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
		return nil
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// entryTags returns the distinct tags of entries in first-seen order.
func entryTags(entries []domain.Entry) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range entries {
		if !seen[e.Tag] {
			seen[e.Tag] = true
			tags = append(tags, e.Tag)
		}
	}
	return tags
}
