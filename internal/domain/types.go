package domain

// Entry is one dated, tagged numeric observation.
//
// ID is nil for an entry that has not been persisted yet.
type Entry struct {
	ID          *int64  `json:"id" yaml:"id"`
	Date        string  `json:"date" yaml:"date"`
	Tag         string  `json:"tag" yaml:"tag"`
	Value       float64 `json:"value" yaml:"value"`
	Locked      bool    `json:"locked" yaml:"locked"`
	Description *string `json:"description" yaml:"description"`
}

// EntryInput is one element of a full-day write. The date comes from the
// day being written, never from the input.
type EntryInput struct {
	Tag         string  `json:"tag" yaml:"tag"`
	Value       float64 `json:"value" yaml:"value"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DayEntries is the result of listing one date.
type DayEntries struct {
	Entries []Entry `json:"entries" yaml:"entries"`
	Locked  bool    `json:"locked" yaml:"locked"`
}

// TagTotal is the sum of values recorded under one tag.
type TagTotal struct {
	Tag   string  `json:"tag" yaml:"tag"`
	Total float64 `json:"total" yaml:"total"`
}

// MonthlySummary groups a month's values by tag.
// Total always equals the sum of Tags[i].Total.
type MonthlySummary struct {
	Tags  []TagTotal `json:"tags" yaml:"tags"`
	Total float64    `json:"total" yaml:"total"`
}

// LockState is the lock state of a day.
type LockState string

const (
	// LockStateNone means the day has no entries. It is treated as unlocked.
	LockStateNone LockState = "none"
	// LockStateUnlocked means the day's entries may still be replaced or edited.
	LockStateUnlocked LockState = "unlocked"
	// LockStateLocked is terminal: the day's entries are frozen.
	LockStateLocked LockState = "locked"
)

// Mutable reports whether entries of a day in this state may be written.
func (s LockState) Mutable() bool {
	return s != LockStateLocked
}

// StrPtr returns a pointer to s. Convenient for optional descriptions and colors.
func StrPtr(s string) *string {
	return &s
}
