package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/evidence-tracker/internal/domain"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"entries", "monthly_totals"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_KeepsDataAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.ReplaceDay(ctx, "2024-01-15", []domain.EntryInput{in("rent", 1200)}))
	_, err = s1.LockDay(ctx, "2024-01-15")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	day, err := s2.List(ctx, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, day.Entries, 1)
	assert.True(t, day.Locked)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestClose_MultipleCalls(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestClose_OperationsFailWithConnectionError(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err = s.List(ctx, "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrConnection)

	err = s.ReplaceDay(ctx, "2024-01-01", nil)
	assert.ErrorIs(t, err, domain.ErrConnection)

	_, err = s.Months(ctx)
	assert.ErrorIs(t, err, domain.ErrConnection)
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestSchemaVersion(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestMigration_AddsDescriptionToLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// A file written before the description column existed.
	legacy, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = legacy.Exec(`
		CREATE TABLE entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			tag TEXT NOT NULL,
			value REAL NOT NULL,
			locked INTEGER DEFAULT 0
		);
		INSERT INTO entries (date, tag, value, locked) VALUES ('2023-12-31', 'rent', 900, 1);
	`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	has, err := hasColumn(s.db, "entries", "description")
	require.NoError(t, err)
	assert.True(t, has)

	day, err := s.List(context.Background(), "2023-12-31")
	require.NoError(t, err)
	require.Len(t, day.Entries, 1)
	assert.True(t, day.Locked)
	assert.Nil(t, day.Entries[0].Description)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	seedDay(t, s, "2024-02-01", in("food", 10))
	day, err := s.List(context.Background(), "2024-02-01")
	require.NoError(t, err)
	assert.Len(t, day.Entries, 1)
}
