package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// LockDay locks every entry of date and returns how many rows it touched.
//
// Locking is idempotent: an already-locked day or a day without entries
// succeeds and changes nothing. There is no way back.
func (s *Store) LockDay(ctx context.Context, date string) (int64, error) {
	var n int64
	err := s.withConn(func() error {
		res, err := s.db.ExecContext(ctx, "UPDATE entries SET locked = 1 WHERE date = ?", date)
		if err != nil {
			return connErr("lock day", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return connErr("lock day: rows affected", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("lock day", "date", date, "rows", n)
	return n, nil
}

// DayState reports the lock state of date.
func (s *Store) DayState(ctx context.Context, date string) (domain.LockState, error) {
	var state domain.LockState
	err := s.withConn(func() error {
		var err error
		state, err = dayState(ctx, s.db, date)
		return err
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// dayState reads the lock state of date through q. Callers hold the mutex.
// Any locked row makes the day locked.
func dayState(ctx context.Context, q queryRower, date string) (domain.LockState, error) {
	var (
		count  int64
		locked sql.NullInt64
	)
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*), MAX(COALESCE(locked, 0)) FROM entries WHERE date = ?", date,
	).Scan(&count, &locked)
	if err != nil {
		return "", connErr("read day state", err)
	}

	switch {
	case count == 0:
		return domain.LockStateNone, nil
	case locked.Valid && locked.Int64 == 1:
		return domain.LockStateLocked, nil
	default:
		return domain.LockStateUnlocked, nil
	}
}

// ensureDayMutable fails with DayLocked if date is locked.
func ensureDayMutable(ctx context.Context, q queryRower, date string) error {
	state, err := dayState(ctx, q, date)
	if err != nil {
		return err
	}
	if !state.Mutable() {
		return domain.DayLocked(date)
	}
	return nil
}

// ensureEntryMutable fails with NotFound if id does not exist and with
// EntryLocked if its row is locked.
func ensureEntryMutable(ctx context.Context, q queryRower, id int64) error {
	var locked int64
	err := q.QueryRowContext(ctx,
		"SELECT COALESCE(locked, 0) FROM entries WHERE id = ?", id,
	).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EntryNotFound(id)
	}
	if err != nil {
		return connErr("read entry lock", err)
	}
	if locked == 1 {
		return domain.EntryLocked(id)
	}
	return nil
}
