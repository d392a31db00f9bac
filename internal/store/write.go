package store

import (
	"context"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// ReplaceDay replaces every entry of date with entries.
//
// Fails with DayLocked if the day is locked. The lock check, the delete and
// the inserts run in one transaction under the store mutex: on any error
// nothing is written. Inserted rows are unlocked and take their date from
// the date argument.
func (s *Store) ReplaceDay(ctx context.Context, date string, entries []domain.EntryInput) error {
	var deleted int64
	err := s.withConn(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return connErr("replace day: begin tx", err)
		}
		defer tx.Rollback() // No-op if committed

		if err := ensureDayMutable(ctx, tx, date); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE date = ?", date)
		if err != nil {
			return connErr("replace day: delete", err)
		}
		deleted, _ = res.RowsAffected()

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO entries (date, tag, value, locked, description) VALUES (?, ?, ?, 0, ?)")
		if err != nil {
			return connErr("replace day: prepare insert", err)
		}
		defer stmt.Close()

		for i, e := range entries {
			if _, err := stmt.ExecContext(ctx, date, e.Tag, e.Value, e.Description); err != nil {
				s.logger.Debug("insert entry failed", "date", date, "index", i, "error", err)
				return connErr("replace day: insert", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return connErr("replace day: commit", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("replace day refused", "date", date, "error", err)
		return err
	}

	s.logger.Debug("replace day", "date", date, "deleted", deleted, "inserted", len(entries))
	return nil
}

// UpdateEntry changes the tag, value and description of entry id in place.
// Its date and lock flag are untouched.
//
// Fails with NotFound if id does not exist and with EntryLocked if the
// entry's day is locked.
func (s *Store) UpdateEntry(ctx context.Context, id int64, tag string, value float64, description *string) error {
	err := s.withConn(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return connErr("update entry: begin tx", err)
		}
		defer tx.Rollback()

		if err := ensureEntryMutable(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE entries SET tag = ?, value = ?, description = ? WHERE id = ?",
			tag, value, description, id,
		); err != nil {
			return connErr("update entry", err)
		}

		if err := tx.Commit(); err != nil {
			return connErr("update entry: commit", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("update entry refused", "id", id, "error", err)
		return err
	}

	s.logger.Debug("update entry", "id", id, "tag", tag, "value", value)
	return nil
}
