package store

import (
	"context"
	"database/sql"

	"github.com/roach88/evidence-tracker/internal/domain"
)

const entryColumns = "id, date, tag, value, COALESCE(locked, 0), description"

// monthFilter matches dates whose leading len(month) characters equal month.
// Unlike LIKE it gives no meaning to '%' or '_' in the argument.
const monthFilter = "substr(date, 1, length(?1)) = ?1"

// List returns all entries for date, ordered by id, and the day's lock flag.
// The flag is false when the day has no entries.
func (s *Store) List(ctx context.Context, date string) (domain.DayEntries, error) {
	var day domain.DayEntries
	err := s.withConn(func() error {
		entries, err := s.queryEntries(ctx,
			"SELECT "+entryColumns+" FROM entries WHERE date = ? ORDER BY id ASC", date)
		if err != nil {
			return err
		}
		day.Entries = entries
		if len(entries) > 0 {
			day.Locked = entries[0].Locked
		}
		return nil
	})
	if err != nil {
		return domain.DayEntries{}, err
	}

	s.logger.Debug("list entries", "date", date, "count", len(day.Entries), "locked", day.Locked)
	return day, nil
}

// Months returns the distinct YYYY-MM prefixes of all stored dates, newest first.
func (s *Store) Months(ctx context.Context) ([]string, error) {
	var months []string
	err := s.withConn(func() error {
		var err error
		months, err = s.queryStrings(ctx,
			"SELECT DISTINCT substr(date, 1, 7) AS month FROM entries ORDER BY month DESC")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("list months", "count", len(months))
	return months, nil
}

// MonthlySummary sums values by tag for the dates of month. Tags are ordered
// by name. A month without entries yields no tags and a zero total.
func (s *Store) MonthlySummary(ctx context.Context, month string) (domain.MonthlySummary, error) {
	summary := domain.MonthlySummary{Tags: []domain.TagTotal{}}
	err := s.withConn(func() error {
		rows, err := s.db.QueryContext(ctx,
			"SELECT tag, SUM(value) FROM entries WHERE "+monthFilter+" GROUP BY tag ORDER BY tag", month)
		if err != nil {
			return connErr("query monthly summary", err)
		}
		defer rows.Close()

		for rows.Next() {
			var tt domain.TagTotal
			if err := rows.Scan(&tt.Tag, &tt.Total); err != nil {
				return connErr("scan monthly summary", err)
			}
			summary.Tags = append(summary.Tags, tt)
			summary.Total += tt.Total
		}
		if err := rows.Err(); err != nil {
			return connErr("iterate monthly summary", err)
		}
		return nil
	})
	if err != nil {
		return domain.MonthlySummary{}, err
	}

	s.logger.Debug("monthly summary", "month", month, "tags", len(summary.Tags), "total", summary.Total)
	return summary, nil
}

// MonthlyEntries returns all entries of month ordered by date, then id.
func (s *Store) MonthlyEntries(ctx context.Context, month string) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := s.withConn(func() error {
		var err error
		entries, err = s.queryEntries(ctx,
			"SELECT "+entryColumns+" FROM entries WHERE "+monthFilter+" ORDER BY date ASC, id ASC", month)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("monthly entries", "month", month, "count", len(entries))
	return entries, nil
}

// GraphDates returns every date that has at least one entry, ascending.
func (s *Store) GraphDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := s.withConn(func() error {
		var err error
		dates, err = s.queryStrings(ctx, "SELECT DISTINCT date FROM entries ORDER BY date ASC")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("graph dates", "count", len(dates))
	return dates, nil
}

// MonthlyTotalsByTag sums values by tag for the dates of month and returns
// them keyed by tag.
func (s *Store) MonthlyTotalsByTag(ctx context.Context, month string) (map[string]float64, error) {
	totals := make(map[string]float64)
	err := s.withConn(func() error {
		rows, err := s.db.QueryContext(ctx,
			"SELECT tag, SUM(value) FROM entries WHERE "+monthFilter+" GROUP BY tag", month)
		if err != nil {
			return connErr("query monthly totals", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				tag   string
				total float64
			)
			if err := rows.Scan(&tag, &total); err != nil {
				return connErr("scan monthly totals", err)
			}
			totals[tag] = total
		}
		if err := rows.Err(); err != nil {
			return connErr("iterate monthly totals", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("monthly totals", "month", month, "tags", len(totals))
	return totals, nil
}

// queryEntries runs query and scans entry rows. Callers hold the mutex.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, connErr("query entries", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, connErr("iterate entries", err)
	}
	return entries, nil
}

// queryStrings runs a single-column query. Callers hold the mutex.
func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, connErr("query", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, connErr("scan", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, connErr("iterate", err)
	}
	return out, nil
}

func scanEntry(rows *sql.Rows) (domain.Entry, error) {
	var (
		e      domain.Entry
		id     int64
		locked int64
		desc   sql.NullString
	)
	if err := rows.Scan(&id, &e.Date, &e.Tag, &e.Value, &locked, &desc); err != nil {
		return domain.Entry{}, connErr("scan entry", err)
	}
	e.ID = &id
	e.Locked = locked == 1
	if desc.Valid {
		e.Description = &desc.String
	}
	return e, nil
}
