package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evidence-tracker/internal/domain"
)

func TestReplaceDay_ListReturnsExactlyTheWrittenSet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := []domain.EntryInput{
		in("rent", 1200),
		in("food", 50.5, "groceries"),
		in("food", -3.25),
	}
	require.NoError(t, s.ReplaceDay(ctx, "2024-01-15", want))

	day, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.False(t, day.Locked)
	require.Len(t, day.Entries, len(want))

	seen := make(map[int64]bool)
	for i, e := range day.Entries {
		require.NotNil(t, e.ID)
		assert.False(t, seen[*e.ID], "duplicate id %d", *e.ID)
		seen[*e.ID] = true

		assert.Equal(t, "2024-01-15", e.Date)
		assert.Equal(t, want[i].Tag, e.Tag)
		assert.Equal(t, want[i].Value, e.Value)
		assert.Equal(t, want[i].Description, e.Description)
		assert.False(t, e.Locked)
	}
}

func TestReplaceDay_IsFullReplace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200), in("food", 50.5))
	oldID := idOf(t, s, "2024-01-15", "rent")

	seedDay(t, s, "2024-01-15", in("travel", 80))

	day, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, "travel", day.Entries[0].Tag)
	assert.NotEqual(t, oldID, *day.Entries[0].ID, "replaced rows get fresh identities")
}

func TestReplaceDay_EmptySetClearsDay(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200))
	require.NoError(t, s.ReplaceDay(ctx, "2024-01-15", nil))

	day, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Empty(t, day.Entries)
	assert.False(t, day.Locked)
}

func TestReplaceDay_DoesNotTouchOtherDays(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-14", in("rent", 1))
	seedDay(t, s, "2024-01-15", in("rent", 2))
	seedDay(t, s, "2024-01-15", in("rent", 3))

	day, err := s.List(ctx, "2024-01-14")
	require.NoError(t, err)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, 1.0, day.Entries[0].Value)
}

func TestReplaceDay_LockedDayFailsAndKeepsRows(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200), in("food", 50.5))
	_, err := s.LockDay(ctx, "2024-01-15")
	require.NoError(t, err)

	before, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)

	err = s.ReplaceDay(ctx, "2024-01-15", []domain.EntryInput{in("hack", 1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDayLocked)
	assert.True(t, domain.IsLockViolation(err))

	// Clearing a locked day is refused too.
	err = s.ReplaceDay(ctx, "2024-01-15", nil)
	assert.ErrorIs(t, err, domain.ErrDayLocked)

	after, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateEntry(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200), in("food", 50.5, "lunch"))
	id := idOf(t, s, "2024-01-15", "food")

	require.NoError(t, s.UpdateEntry(ctx, id, "dining", 61, domain.StrPtr("dinner")))

	day, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, day.Entries, 2)

	var got domain.Entry
	for _, e := range day.Entries {
		if *e.ID == id {
			got = e
		}
	}
	assert.Equal(t, "dining", got.Tag)
	assert.Equal(t, 61.0, got.Value)
	require.NotNil(t, got.Description)
	assert.Equal(t, "dinner", *got.Description)
	assert.Equal(t, "2024-01-15", got.Date)
	assert.False(t, got.Locked)
}

func TestUpdateEntry_ClearsDescription(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("food", 50.5, "lunch"))
	id := idOf(t, s, "2024-01-15", "food")

	require.NoError(t, s.UpdateEntry(ctx, id, "food", 50.5, nil))

	day, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Nil(t, day.Entries[0].Description)
}

func TestUpdateEntry_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.UpdateEntry(context.Background(), 4242, "rent", 1, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, domain.IsLockViolation(err))
}

func TestUpdateEntry_LockedFailsAndKeepsRow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedDay(t, s, "2024-01-15", in("rent", 1200))
	id := idOf(t, s, "2024-01-15", "rent")
	_, err := s.LockDay(ctx, "2024-01-15")
	require.NoError(t, err)

	err = s.UpdateEntry(ctx, id, "rent", 1300, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEntryLocked)

	day, err := s.List(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, day.Entries, 1)
	assert.Equal(t, 1200.0, day.Entries[0].Value)
	assert.True(t, day.Entries[0].Locked)
}
