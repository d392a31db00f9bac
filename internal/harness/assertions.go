package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%s] %s %v -> %s %s\n", ev.Step, ev.Op, ev.Args, ev.Outcome, ev.Error)
		}
	}
	return buf.String()
}

// evaluateAssertions checks every assertion and returns failure messages.
func (h *Harness) evaluateAssertions(ctx context.Context, result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.evaluate(ctx, result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func (h *Harness) evaluate(ctx context.Context, result *Result, a Assertion) error {
	switch a.Type {
	case AssertDayLocked:
		day, err := h.tracker.GetEntries(ctx, a.Date)
		if err != nil {
			return err
		}
		if day.Locked != a.Locked {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s locked=%t", a.Date, a.Locked),
				Actual:   fmt.Sprintf("locked=%t", day.Locked),
				Trace:    result.Trace,
			}
		}
		for _, e := range day.Entries {
			if e.Locked != day.Locked {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("every entry of %s locked=%t", a.Date, day.Locked),
					Actual:   fmt.Sprintf("entry %d locked=%t", *e.ID, e.Locked),
					Trace:    result.Trace,
				}
			}
		}
		return nil

	case AssertEntryCount:
		day, err := h.tracker.GetEntries(ctx, a.Date)
		if err != nil {
			return err
		}
		if len(day.Entries) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d entries on %s", a.Count, a.Date),
				Actual:   fmt.Sprintf("%d entries", len(day.Entries)),
				Trace:    result.Trace,
			}
		}
		return nil

	case AssertSummary:
		summary, err := h.tracker.MonthlySummary(ctx, a.Month)
		if err != nil {
			return err
		}
		got := make(map[string]float64, len(summary.Tags))
		for _, t := range summary.Tags {
			got[t.Tag] = t.Total
		}
		if a.Totals != nil && !equalTotals(got, a.Totals) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s totals %s", a.Month, formatTotals(a.Totals)),
				Actual:   formatTotals(got),
			}
		}
		if a.Total != nil && summary.Total != *a.Total {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s total %v", a.Month, *a.Total),
				Actual:   fmt.Sprintf("%v", summary.Total),
			}
		}
		return nil

	case AssertTraceCount:
		n := 0
		for _, ev := range result.Trace {
			if ev.Op == a.Op {
				n++
			}
		}
		if n != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s %d times", a.Op, a.Count),
				Actual:   fmt.Sprintf("%d times", n),
				Trace:    result.Trace,
			}
		}
		return nil

	case AssertTags:
		cfg, err := h.tracker.TagConfig()
		if err != nil {
			return err
		}
		for _, name := range a.Contains {
			if !cfg.Has(name) {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("tag %q present", name),
					Actual:   fmt.Sprintf("tags %v", cfg.AvailableTags),
				}
			}
		}
		for _, name := range a.Absent {
			_, colored := cfg.TagColors[name]
			if cfg.Has(name) || colored {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("tag %q absent", name),
					Actual:   fmt.Sprintf("tags %v colors %v", cfg.AvailableTags, cfg.TagColors),
				}
			}
		}
		return nil
	}

	return fmt.Errorf("%w %q", errUnknown, a.Type)
}

func equalTotals(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// formatTotals renders totals with sorted keys.
func formatTotals(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
