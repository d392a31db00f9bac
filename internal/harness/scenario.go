package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// Scenario defines an end-to-end check of the tracker.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tags, when set, is written as tags.json before setup runs.
	Tags *domain.TagConfig `yaml:"tags,omitempty"`

	// Setup steps establish initial state and must succeed.
	// They are not traced.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow steps are traced and may carry expectations.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step invokes one tracker operation. Only the fields the operation needs
// are read.
type Step struct {
	Op          string              `yaml:"op"`
	Date        string              `yaml:"date,omitempty"`
	Month       string              `yaml:"month,omitempty"`
	ID          *int64              `yaml:"id,omitempty"`
	Ref         *EntryRef           `yaml:"ref,omitempty"`
	Entries     []domain.EntryInput `yaml:"entries,omitempty"`
	Tag         string              `yaml:"tag,omitempty"`
	Value       *float64            `yaml:"value,omitempty"`
	Description *string             `yaml:"description,omitempty"`
	Name        string              `yaml:"name,omitempty"`
	Color       *string             `yaml:"color,omitempty"`
	Config      *domain.TagConfig   `yaml:"config,omitempty"`

	// Expect, if set, is checked against the step's outcome.
	// Without it the step is expected to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// EntryRef addresses an entry by its position in a day's listing.
type EntryRef struct {
	Date  string `yaml:"date"`
	Index int    `yaml:"index"`
}

// Expect specifies a step's expected outcome.
type Expect struct {
	// Error is the expected error code (e.g. "DAY_LOCKED"). Empty means
	// the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Result is matched against the step's result as a subset: only the
	// given fields are compared.
	Result any `yaml:"result,omitempty"`
}

// Assertion validates final state or the trace.
type Assertion struct {
	// Type is one of day_locked, entry_count, summary, trace_count, tags.
	Type string `yaml:"type"`

	Date   string             `yaml:"date,omitempty"`   // day_locked, entry_count
	Month  string             `yaml:"month,omitempty"`  // summary
	Locked bool               `yaml:"locked,omitempty"` // day_locked
	Count  int                `yaml:"count,omitempty"`  // entry_count, trace_count
	Op     string             `yaml:"op,omitempty"`     // trace_count
	Totals map[string]float64 `yaml:"totals,omitempty"` // summary
	Total  *float64           `yaml:"total,omitempty"`  // summary

	Contains []string `yaml:"contains,omitempty"` // tags
	Absent   []string `yaml:"absent,omitempty"`   // tags
}

// Operation names.
const (
	OpReplace      = "replace"
	OpList         = "list"
	OpLock         = "lock"
	OpUpdate       = "update"
	OpDayState     = "day_state"
	OpMonths       = "months"
	OpSummary      = "summary"
	OpMonthEntries = "month_entries"
	OpGraphDates   = "graph_dates"
	OpTotals       = "totals"
	OpReadTags     = "read_tags"
	OpSaveTags     = "save_tags"
	OpAddTag       = "add_tag"
	OpRemoveTag    = "remove_tag"
)

// Assertion type constants.
const (
	AssertDayLocked  = "day_locked"
	AssertEntryCount = "entry_count"
	AssertSummary    = "summary"
	AssertTraceCount = "trace_count"
	AssertTags       = "tags"
)

var validOps = map[string]bool{
	OpReplace: true, OpList: true, OpLock: true, OpUpdate: true, OpDayState: true,
	OpMonths: true, OpSummary: true, OpMonthEntries: true, OpGraphDates: true, OpTotals: true,
	OpReadTags: true, OpSaveTags: true, OpAddTag: true, OpRemoveTag: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and known names.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if len(s.Flow) == 0 {
		return errors.New("flow must have at least one step")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertDayLocked, AssertEntryCount:
			if a.Date == "" {
				return fmt.Errorf("assertions[%d]: %s requires date", i, a.Type)
			}
		case AssertSummary:
			if a.Month == "" {
				return fmt.Errorf("assertions[%d]: summary requires month", i)
			}
		case AssertTraceCount:
			if a.Op == "" {
				return fmt.Errorf("assertions[%d]: trace_count requires op", i)
			}
		case AssertTags:
		default:
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if !validOps[step.Op] {
		return fmt.Errorf("unknown op %q", step.Op)
	}

	switch step.Op {
	case OpReplace, OpList, OpLock, OpDayState:
		if step.Date == "" {
			return fmt.Errorf("%s requires date", step.Op)
		}
	case OpSummary, OpMonthEntries, OpTotals:
		if step.Month == "" {
			return fmt.Errorf("%s requires month", step.Op)
		}
	case OpUpdate:
		if step.ID == nil && step.Ref == nil {
			return errors.New("update requires id or ref")
		}
		if step.Tag == "" || step.Value == nil {
			return errors.New("update requires tag and value")
		}
	case OpAddTag, OpRemoveTag:
		if step.Name == "" {
			return fmt.Errorf("%s requires name", step.Op)
		}
	case OpSaveTags:
		if step.Config == nil {
			return errors.New("save_tags requires config")
		}
	}
	return nil
}
