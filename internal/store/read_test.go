package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evidence-tracker/internal/domain"
)

func TestList_UnknownDateIsEmpty(t *testing.T) {
	s := createTestStore(t)

	day, err := s.List(context.Background(), "1999-12-31")
	require.NoError(t, err)
	assert.NotNil(t, day.Entries)
	assert.Empty(t, day.Entries)
	assert.False(t, day.Locked)
}

func TestMonths_DistinctNewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2023-12-31", in("rent", 1))
	seedDay(t, s, "2024-02-01", in("rent", 1))
	seedDay(t, s, "2024-01-15", in("rent", 1))
	seedDay(t, s, "2024-01-20", in("rent", 1))

	months, err := s.Months(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02", "2024-01", "2023-12"}, months)
}

func TestMonths_EmptyDatabase(t *testing.T) {
	s := createTestStore(t)

	months, err := s.Months(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, months)
	assert.Empty(t, months)
}

func TestMonthlySummary(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200), in("food", 50.5))
	seedDay(t, s, "2024-01-20", in("food", 20))
	seedDay(t, s, "2024-02-01", in("food", 999))

	summary, err := s.MonthlySummary(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, domain.MonthlySummary{
		Tags: []domain.TagTotal{
			{Tag: "food", Total: 70.5},
			{Tag: "rent", Total: 1200},
		},
		Total: 1270.5,
	}, summary)
}

func TestMonthlySummary_EmptyMonth(t *testing.T) {
	s := createTestStore(t)

	summary, err := s.MonthlySummary(context.Background(), "2020-01")
	require.NoError(t, err)
	assert.NotNil(t, summary.Tags)
	assert.Empty(t, summary.Tags)
	assert.Zero(t, summary.Total)
}

// The summary must agree with the month's entries summed by hand.
func TestMonthlySummary_MatchesMonthlyEntries(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-05-01", in("a", 1.5), in("b", 2), in("a", -0.5))
	seedDay(t, s, "2024-05-31", in("c", 10), in("b", 3))
	seedDay(t, s, "2024-06-01", in("a", 100))

	entries, err := s.MonthlyEntries(ctx, "2024-05")
	require.NoError(t, err)

	want := make(map[string]float64)
	var wantTotal float64
	for _, e := range entries {
		want[e.Tag] += e.Value
		wantTotal += e.Value
	}

	summary, err := s.MonthlySummary(ctx, "2024-05")
	require.NoError(t, err)

	got := make(map[string]float64)
	for _, tt := range summary.Tags {
		got[tt.Tag] = tt.Total
	}
	assert.Equal(t, want, got)
	assert.InDelta(t, wantTotal, summary.Total, 1e-9)

	totals, err := s.MonthlyTotalsByTag(ctx, "2024-05")
	require.NoError(t, err)
	assert.Equal(t, want, totals)
}

func TestMonthlyEntries_OrderedByDateThenID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Later date written first so id order and date order disagree.
	seedDay(t, s, "2024-01-20", in("x", 1), in("y", 2))
	seedDay(t, s, "2024-01-05", in("z", 3))

	entries, err := s.MonthlyEntries(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "2024-01-05", entries[0].Date)
	assert.Equal(t, "2024-01-20", entries[1].Date)
	assert.Equal(t, "2024-01-20", entries[2].Date)
	assert.Less(t, *entries[1].ID, *entries[2].ID)
}

func TestMonthlyEntries_CarryLockFlag(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-05", in("a", 1))
	seedDay(t, s, "2024-01-06", in("b", 1))
	_, err := s.LockDay(ctx, "2024-01-05")
	require.NoError(t, err)

	entries, err := s.MonthlyEntries(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Locked)
	assert.False(t, entries[1].Locked)
}

func TestMonthFilter_IsLiteralPrefix(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200))

	for _, month := range []string{"2024-%", "2024_01", "%"} {
		entries, err := s.MonthlyEntries(ctx, month)
		require.NoError(t, err)
		assert.Empty(t, entries, "month %q matched as a pattern", month)
	}

	// A shorter prefix still matches, as with any prefix filter.
	entries, err := s.MonthlyEntries(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGraphDates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-03-02", in("a", 1), in("b", 1))
	seedDay(t, s, "2023-11-30", in("a", 1))
	seedDay(t, s, "2024-01-01", in("a", 1))
	seedDay(t, s, "2024-01-01", nil...)

	dates, err := s.GraphDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-11-30", "2024-03-02"}, dates)
}

func TestMonthlyTotalsByTag_EmptyMonth(t *testing.T) {
	s := createTestStore(t)

	totals, err := s.MonthlyTotalsByTag(context.Background(), "2024-01")
	require.NoError(t, err)
	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestConcreteScenario_LockThenSummarize(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200.0), in("food", 50.5))
	rentID := idOf(t, s, "2024-01-15", "rent")

	_, err := s.LockDay(ctx, "2024-01-15")
	require.NoError(t, err)

	err = s.UpdateEntry(ctx, rentID, "rent", 1, nil)
	assert.ErrorIs(t, err, domain.ErrEntryLocked)

	summary, err := s.MonthlySummary(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, []domain.TagTotal{
		{Tag: "food", Total: 50.5},
		{Tag: "rent", Total: 1200},
	}, summary.Tags)
	assert.Equal(t, 1250.5, summary.Total)
}
