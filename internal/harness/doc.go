// Package harness runs YAML scenarios against a real tracker.
//
// Each scenario gets a fresh configuration directory (entry database and
// tags.json) so entry ids start at 1 and traces are reproducible.
//
// # Scenario Format
//
//	name: lock_blocks_edits
//	description: "Locked days reject writes"
//	tags:                       # optional initial tags.json
//	  available_tags: [rent]
//	  tag_colors: {}
//	setup:                      # steps that must succeed
//	  - op: replace
//	    date: "2024-01-15"
//	    entries:
//	      - {tag: rent, value: 1200}
//	flow:                       # traced steps, optionally with expectations
//	  - op: lock
//	    date: "2024-01-15"
//	  - op: update
//	    ref: {date: "2024-01-15", index: 0}
//	    tag: rent
//	    value: 1300
//	    expect:
//	      error: ENTRY_LOCKED
//	assertions:
//	  - type: day_locked
//	    date: "2024-01-15"
//	    locked: true
//
// # Operations
//
// replace, list, lock, update, day_state, months, summary, month_entries,
// graph_dates, totals, read_tags, save_tags, add_tag, remove_tag.
//
// # Assertion Types
//
//   - day_locked: the day's lock flag equals locked
//   - entry_count: the day has exactly count entries
//   - summary: the month's per-tag totals and grand total
//   - trace_count: op appears exactly count times in the trace
//   - tags: the tag configuration contains and lacks the given names
//
// RunWithGolden compares the trace against testdata/golden/<name>.golden.
package harness
