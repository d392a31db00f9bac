package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/evidence-tracker/internal/config"
	"github.com/roach88/evidence-tracker/internal/domain"
	"github.com/roach88/evidence-tracker/internal/testutil"
	"github.com/roach88/evidence-tracker/internal/tracker"
)

// Harness executes scenario steps against one tracker.
type Harness struct {
	tracker *tracker.Tracker
	steps   *testutil.SequentialIDs
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary configuration directory that is
// removed afterwards.
//
// Execution flow:
// 1. Open a tracker on an empty directory
// 2. Write the initial tags.json, if any
// 3. Execute setup steps (all must succeed)
// 4. Execute flow steps, tracing each and checking expectations
// 5. Evaluate assertions
//
// The returned error reports a broken scenario (setup failure, bad entry
// reference); failed expectations and assertions are reported in Result.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "evidence-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	logger := testutil.DiscardLogger()
	tr, err := tracker.Open(config.Config{Dir: dir}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracker: %w", err)
	}
	defer tr.Close()

	h := &Harness{
		tracker: tr,
		steps:   testutil.NewSequentialIDs("step"),
		logger:  logger,
	}
	ctx := context.Background()

	if scenario.Tags != nil {
		if err := tr.SaveTagConfig(*scenario.Tags); err != nil {
			return nil, fmt.Errorf("failed to write initial tags: %w", err)
		}
	}

	for i, step := range scenario.Setup {
		id, err := h.resolveID(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("setup[%d]: %w", i, err)
		}
		if _, _, err := h.execute(ctx, step, id); err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Op, err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeFlowStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range h.evaluateAssertions(ctx, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeFlowStep runs one traced step and checks its expectation.
func (h *Harness) executeFlowStep(ctx context.Context, i int, step Step, result *Result) error {
	id, err := h.resolveID(ctx, step)
	if err != nil {
		return fmt.Errorf("flow[%d]: %w", i, err)
	}

	args, out, opErr := h.execute(ctx, step, id)
	ev := TraceEvent{
		Step:    h.steps.Next(),
		Op:      step.Op,
		Args:    args,
		Outcome: OutcomeOK,
	}
	if opErr != nil {
		ev.Outcome = OutcomeError
		ev.Error = string(domain.CodeOf(opErr))
		if ev.Error == "" {
			ev.Error = "UNKNOWN"
		}
	} else if out != nil {
		normalized, err := normalize(out)
		if err != nil {
			return fmt.Errorf("flow[%d]: normalize result: %w", i, err)
		}
		ev.Result = normalized
	}
	result.addTrace(ev)

	h.logger.Debug("flow step", "step", ev.Step, "op", ev.Op, "outcome", ev.Outcome, "error", ev.Error)

	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}
	switch {
	case expect.Error != "" && ev.Error != expect.Error:
		result.AddError(fmt.Sprintf("%s %s: expected error %s, got %s", ev.Step, step.Op, expect.Error, describeOutcome(ev, opErr)))
	case expect.Error == "" && opErr != nil:
		result.AddError(fmt.Sprintf("%s %s: expected success, got %v", ev.Step, step.Op, opErr))
	case expect.Result != nil && opErr == nil:
		want, err := normalize(expect.Result)
		if err != nil {
			return fmt.Errorf("flow[%d]: normalize expected result: %w", i, err)
		}
		if !matchSubset(ev.Result, want) {
			result.AddError(fmt.Sprintf("%s %s: result %v does not match expected %v", ev.Step, step.Op, ev.Result, want))
		}
	}
	return nil
}

func describeOutcome(ev TraceEvent, err error) string {
	if err == nil {
		return "success"
	}
	return fmt.Sprintf("%s (%v)", ev.Error, err)
}

// resolveID returns the entry id a step targets, following Ref when set.
func (h *Harness) resolveID(ctx context.Context, step Step) (int64, error) {
	if step.ID != nil {
		return *step.ID, nil
	}
	if step.Ref == nil {
		return 0, nil
	}

	day, err := h.tracker.GetEntries(ctx, step.Ref.Date)
	if err != nil {
		return 0, fmt.Errorf("resolve ref %s[%d]: %w", step.Ref.Date, step.Ref.Index, err)
	}
	if step.Ref.Index < 0 || step.Ref.Index >= len(day.Entries) {
		return 0, fmt.Errorf("resolve ref %s[%d]: day has %d entries", step.Ref.Date, step.Ref.Index, len(day.Entries))
	}
	return *day.Entries[step.Ref.Index].ID, nil
}

// execute invokes the step's operation. It returns the traced arguments,
// the operation's result (nil for acknowledgements) and its error.
func (h *Harness) execute(ctx context.Context, step Step, id int64) (map[string]any, any, error) {
	tr := h.tracker
	args := map[string]any{}

	switch step.Op {
	case OpReplace:
		entries := step.Entries
		if entries == nil {
			entries = []domain.EntryInput{}
		}
		args["date"] = step.Date
		args["entries"] = mustNormalize(entries)
		return args, nil, tr.ReplaceDay(ctx, step.Date, entries)

	case OpList:
		args["date"] = step.Date
		day, err := tr.GetEntries(ctx, step.Date)
		return args, day, err

	case OpLock:
		args["date"] = step.Date
		msg, err := tr.LockDay(ctx, step.Date)
		if err != nil {
			return args, nil, err
		}
		return args, msg, nil

	case OpUpdate:
		args["id"] = id
		args["tag"] = step.Tag
		args["value"] = *step.Value
		if step.Description != nil {
			args["description"] = *step.Description
		}
		return args, nil, tr.UpdateEntry(ctx, id, step.Tag, *step.Value, step.Description)

	case OpDayState:
		args["date"] = step.Date
		state, err := tr.DayState(ctx, step.Date)
		return args, state, err

	case OpMonths:
		months, err := tr.Months(ctx)
		return nil, months, err

	case OpSummary:
		args["month"] = step.Month
		summary, err := tr.MonthlySummary(ctx, step.Month)
		return args, summary, err

	case OpMonthEntries:
		args["month"] = step.Month
		entries, err := tr.MonthlyEntries(ctx, step.Month)
		return args, entries, err

	case OpGraphDates:
		dates, err := tr.GraphDates(ctx)
		return nil, dates, err

	case OpTotals:
		args["month"] = step.Month
		totals, err := tr.MonthlyTotals(ctx, step.Month)
		return args, totals, err

	case OpReadTags:
		cfg, err := tr.TagConfig()
		return nil, cfg, err

	case OpSaveTags:
		args["config"] = mustNormalize(step.Config)
		return args, nil, tr.SaveTagConfig(*step.Config)

	case OpAddTag:
		args["name"] = step.Name
		if step.Color != nil {
			args["color"] = *step.Color
		}
		return args, nil, tr.AddTag(step.Name, step.Color)

	case OpRemoveTag:
		args["name"] = step.Name
		return args, nil, tr.RemoveTag(step.Name)
	}

	return args, nil, fmt.Errorf("unknown op %q", step.Op)
}

// normalize converts v to the generic JSON shape (maps, slices, float64)
// so results compare and serialize the same way regardless of origin.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// mustNormalize normalizes values built from decoded scenario YAML, which
// always marshal.
func mustNormalize(v any) any {
	out, err := normalize(v)
	if err != nil {
		panic(fmt.Sprintf("normalize %T: %v", v, err))
	}
	return out
}

// matchSubset reports whether actual contains expected: maps match on the
// expected keys only, slices must match element by element.
func matchSubset(actual, expected any) bool {
	switch want := expected.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range want {
			if !matchSubset(got[k], v) {
				return false
			}
		}
		return true
	case []any:
		got, ok := actual.([]any)
		if !ok || len(got) != len(want) {
			return false
		}
		for i := range want {
			if !matchSubset(got[i], want[i]) {
				return false
			}
		}
		return true
	default:
		return actual == expected
	}
}

// errUnknown is returned for assertion types the validator missed.
var errUnknown = errors.New("unknown assertion type")
