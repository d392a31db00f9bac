package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// Export layouts.
const (
	LayoutEntries = "entries"
	LayoutGrid    = "grid"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
	Layout string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <month>",
		Short: "Export a month as CSV",
		Long: `Export the entries of a month (YYYY-MM) as CSV.

Layouts:
  entries  one row per entry: Date, Category, Description, Amount
  grid     one row per date with a column per tag and a Daily Total;
           columns follow the tag configuration, unknown tags last

Example:
  evidence export 2024-01 > january.csv
  evidence export 2024-01 --layout grid --output january-grid.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.Layout, "layout", LayoutEntries, "CSV layout (entries|grid)")

	return cmd
}

func runExport(opts *ExportOptions, month string, cmd *cobra.Command) error {
	if opts.Layout != LayoutEntries && opts.Layout != LayoutGrid {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid layout %q: must be %s or %s", opts.Layout, LayoutEntries, LayoutGrid))
	}

	tr, err := opts.openTracker(cmd)
	if err != nil {
		return err
	}
	defer tr.Close()

	entries, err := tr.MonthlyEntries(commandContext(cmd), month)
	if err != nil {
		return failed("failed to list month entries", err)
	}

	var rows [][]string
	if opts.Layout == LayoutGrid {
		tags, err := tr.TagConfig()
		if err != nil {
			return failed("failed to read tag configuration", err)
		}
		rows = gridRows(entries, tags.AvailableTags)
	} else {
		rows = entryRows(entries)
	}

	w := cmd.OutOrStdout()
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create output file", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeCSV(w, rows); err != nil {
		return WrapExitError(ExitCommandError, "failed to write CSV", err)
	}
	if opts.Output != "" {
		opts.formatter(cmd).VerboseLog("exported %d entries to %s", len(entries), opts.Output)
	}
	return nil
}

// entryRows lays out one row per entry.
func entryRows(entries []domain.Entry) [][]string {
	rows := [][]string{{"Date", "Category", "Description", "Amount"}}
	for _, e := range entries {
		desc := ""
		if e.Description != nil {
			desc = *e.Description
		}
		rows = append(rows, []string{e.Date, e.Tag, desc, formatAmount(e.Value)})
	}
	return rows
}

// gridRows lays out one row per date and one column per tag. Columns follow
// known, then tags found only in entries. Dates arrive sorted.
func gridRows(entries []domain.Entry, known []string) [][]string {
	columns := append([]string{}, known...)
	index := make(map[string]int, len(columns))
	for i, t := range columns {
		index[t] = i
	}
	for _, t := range entryTags(entries) {
		if _, ok := index[t]; !ok {
			index[t] = len(columns)
			columns = append(columns, t)
		}
	}

	header := append([]string{"Date"}, columns...)
	rows := [][]string{append(header, "Daily Total")}

	var (
		date   string
		sums   []float64
		totals = make([]float64, len(columns))
	)
	flush := func() {
		if date == "" {
			return
		}
		row := []string{date}
		var day float64
		for _, v := range sums {
			row = append(row, formatAmount(v))
			day += v
		}
		rows = append(rows, append(row, formatAmount(day)))
	}
	for _, e := range entries {
		if e.Date != date {
			flush()
			date = e.Date
			sums = make([]float64, len(columns))
		}
		sums[index[e.Tag]] += e.Value
		totals[index[e.Tag]] += e.Value
	}
	flush()

	if len(entries) > 0 {
		row := []string{"Total"}
		var all float64
		for _, v := range totals {
			row = append(row, formatAmount(v))
			all += v
		}
		rows = append(rows, append(row, formatAmount(all)))
	}
	return rows
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
