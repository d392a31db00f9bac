package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// in builds an entry input with an optional description.
func in(tag string, value float64, desc ...string) domain.EntryInput {
	e := domain.EntryInput{Tag: tag, Value: value}
	if len(desc) > 0 {
		e.Description = domain.StrPtr(desc[0])
	}
	return e
}

// seedDay replaces date with entries and fails the test on error.
func seedDay(t *testing.T, s *Store, date string, entries ...domain.EntryInput) {
	t.Helper()
	require.NoError(t, s.ReplaceDay(context.Background(), date, entries))
}

// idOf returns the id of the first entry of date with the given tag.
func idOf(t *testing.T, s *Store, date, tag string) int64 {
	t.Helper()
	day, err := s.List(context.Background(), date)
	require.NoError(t, err)
	for _, e := range day.Entries {
		if e.Tag == tag {
			require.NotNil(t, e.ID)
			return *e.ID
		}
	}
	t.Fatalf("no entry tagged %q on %s", tag, date)
	return 0
}
