package tracker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evidence-tracker/internal/config"
	"github.com/roach88/evidence-tracker/internal/domain"
	"github.com/roach88/evidence-tracker/internal/tagconfig"
	"github.com/roach88/evidence-tracker/internal/testutil"
	"github.com/roach88/evidence-tracker/internal/watcher"
)

func openTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := Open(config.Config{Dir: testutil.ConfigDir(t)}, testutil.DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestOpen_CreatesLayout(t *testing.T) {
	dir := testutil.ConfigDir(t)
	tr, err := Open(config.Config{Dir: dir}, testutil.DiscardLogger())
	require.NoError(t, err)
	defer tr.Close()

	_, err = os.Stat(filepath.Join(dir, config.DatabaseFile))
	assert.NoError(t, err)
	assert.Equal(t, dir, tr.ConfigPath())
}

func TestOpen_SetupError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Open(config.Config{Dir: blocker}, testutil.DiscardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSetup)
}

func TestTagsFileNamesAgree(t *testing.T) {
	assert.Equal(t, tagconfig.FileName, config.TagsFile)
}

func TestConcreteScenario(t *testing.T) {
	tr := openTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.ReplaceDay(ctx, "2024-01-15", []domain.EntryInput{
		{Tag: "rent", Value: 1200.0},
		{Tag: "food", Value: 50.5},
	}))

	day, err := tr.GetEntries(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, day.Entries, 2)
	assert.False(t, day.Locked)
	rentID := *day.Entries[0].ID

	msg, err := tr.LockDay(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "Day 2024-01-15 locked successfully", msg)

	err = tr.UpdateEntry(ctx, rentID, "rent", 1300.0, nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeEntryLocked, domain.CodeOf(err))

	summary, err := tr.MonthlySummary(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 1250.5, summary.Total)

	totals, err := tr.MonthlyTotals(ctx, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"rent": 1200, "food": 50.5}, totals)

	state, err := tr.DayState(ctx, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, domain.LockStateLocked, state)
}

func TestQueries(t *testing.T) {
	tr := openTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.ReplaceDay(ctx, "2024-02-03", []domain.EntryInput{{Tag: "a", Value: 1}}))
	require.NoError(t, tr.ReplaceDay(ctx, "2024-01-09", []domain.EntryInput{{Tag: "b", Value: 2}}))

	months, err := tr.Months(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02", "2024-01"}, months)

	dates, err := tr.GraphDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-09", "2024-02-03"}, dates)

	entries, err := tr.MonthlyEntries(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].Tag)
}

func TestTagOperations(t *testing.T) {
	tr := openTestTracker(t)

	require.NoError(t, tr.SaveTagConfig(domain.TagConfig{AvailableTags: []string{"rent"}}))

	require.NoError(t, tr.AddTag("Food", domain.StrPtr("#ff0000")))
	require.NoError(t, tr.AddTag("Food", nil))

	cfg, err := tr.TagConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"rent", "Food"}, cfg.AvailableTags)
	assert.Equal(t, "#ff0000", cfg.TagColors["Food"])

	require.NoError(t, tr.RemoveTag("Food"))
	require.NoError(t, tr.RemoveTag("Food"))

	cfg, err = tr.TagConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"rent"}, cfg.AvailableTags)
	assert.NotContains(t, cfg.TagColors, "Food")
}

func TestOperationsAfterClose(t *testing.T) {
	tr, err := Open(config.Config{Dir: testutil.ConfigDir(t)}, testutil.DiscardLogger())
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	_, err = tr.GetEntries(context.Background(), "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrConnection)

	// The tag store does not depend on the database.
	_, err = tr.TagConfig()
	assert.NoError(t, err)
}

func TestWatchTags_NotifiesOnSave(t *testing.T) {
	tr := openTestTracker(t)
	ids := testutil.NewSequentialIDs("n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := tr.WatchTags(ctx, watcher.WithIDGenerator(ids.Next))
	require.NoError(t, err)

	require.NoError(t, tr.AddTag("Food", nil))

	select {
	case n := <-w.Notifications():
		assert.Equal(t, watcher.EventTagsChanged, n.Name)
		assert.Equal(t, "n-1", n.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification after saving tags")
	}

	cancel()
	for range w.Notifications() {
	}
}
