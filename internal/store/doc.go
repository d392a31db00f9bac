// Package store provides the SQLite-backed entry store of the evidence
// tracker.
//
// The store owns every entry row. All access goes through a single database
// connection guarded by one mutex; every operation holds the mutex from its
// first statement to its last, so callers are fully serialized and never see
// an interleaving of another caller's statements.
//
// # Day-lock protocol
//
// A day (the set of entries sharing a date) is either unlocked or locked:
//
//	(no entries) --ReplaceDay--> UNLOCKED --LockDay--> LOCKED (terminal)
//
// ReplaceDay and UpdateEntry check the lock and mutate inside the same
// transaction while the mutex is held, so no other caller can lock the day
// between the check and the write. There is no unlock.
//
// # Schema
//
//   - entries: id, date, tag, value, locked (0/1, repeated per row), description
//   - monthly_totals: reserved, never read or written
//
// Schema changes are tracked with PRAGMA user_version. Version 1 adds the
// description column to files created before it existed.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - one open connection
package store
