// Package tracker is the command surface of the evidence tracker.
//
// A Tracker owns the entry store and the tag configuration store for one
// configuration directory. Callers (the CLI, the scenario harness) invoke
// its operations and receive plain data or a *domain.Error.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/evidence-tracker/internal/config"
	"github.com/roach88/evidence-tracker/internal/domain"
	"github.com/roach88/evidence-tracker/internal/store"
	"github.com/roach88/evidence-tracker/internal/tagconfig"
	"github.com/roach88/evidence-tracker/internal/watcher"
)

// Tracker serves every operation against one configuration directory.
type Tracker struct {
	cfg    config.Config
	store  *store.Store
	tags   *tagconfig.Store
	logger *slog.Logger
}

// Open creates the configuration directory and opens both stores.
// Any failure is a domain.CodeSetup error.
func Open(cfg config.Config, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, domain.Wrap(domain.CodeSetup, "failed to create config directory", err)
	}

	st, err := store.Open(cfg.DatabasePath(), store.WithLogger(logger.With("component", "store")))
	if err != nil {
		return nil, domain.Wrap(domain.CodeSetup, "failed to initialize database", err)
	}

	logger.Debug("tracker opened", "dir", cfg.Dir)
	return &Tracker{
		cfg:    cfg,
		store:  st,
		tags:   tagconfig.New(cfg.Dir, tagconfig.WithLogger(logger.With("component", "tagconfig"))),
		logger: logger,
	}, nil
}

// Close releases the entry database.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// GetEntries lists the entries of date and the day's lock flag.
func (t *Tracker) GetEntries(ctx context.Context, date string) (domain.DayEntries, error) {
	return t.store.List(ctx, date)
}

// ReplaceDay replaces every entry of date. Fails with DAY_LOCKED on a
// locked day.
func (t *Tracker) ReplaceDay(ctx context.Context, date string, entries []domain.EntryInput) error {
	return t.store.ReplaceDay(ctx, date, entries)
}

// LockDay locks date and returns a confirmation message.
func (t *Tracker) LockDay(ctx context.Context, date string) (string, error) {
	if _, err := t.store.LockDay(ctx, date); err != nil {
		return "", err
	}
	return fmt.Sprintf("Day %s locked successfully", date), nil
}

// UpdateEntry edits one entry in place.
func (t *Tracker) UpdateEntry(ctx context.Context, id int64, tag string, value float64, description *string) error {
	return t.store.UpdateEntry(ctx, id, tag, value, description)
}

// DayState reports whether date has no entries, is unlocked or is locked.
func (t *Tracker) DayState(ctx context.Context, date string) (domain.LockState, error) {
	return t.store.DayState(ctx, date)
}

// Months lists the months with entries, newest first.
func (t *Tracker) Months(ctx context.Context) ([]string, error) {
	return t.store.Months(ctx)
}

// MonthlySummary returns per-tag totals and the grand total of month.
func (t *Tracker) MonthlySummary(ctx context.Context, month string) (domain.MonthlySummary, error) {
	return t.store.MonthlySummary(ctx, month)
}

// MonthlyEntries lists the entries of month by date, then id.
func (t *Tracker) MonthlyEntries(ctx context.Context, month string) ([]domain.Entry, error) {
	return t.store.MonthlyEntries(ctx, month)
}

// GraphDates lists every date with entries, ascending.
func (t *Tracker) GraphDates(ctx context.Context) ([]string, error) {
	return t.store.GraphDates(ctx)
}

// MonthlyTotals returns the per-tag totals of month as a map.
func (t *Tracker) MonthlyTotals(ctx context.Context, month string) (map[string]float64, error) {
	return t.store.MonthlyTotalsByTag(ctx, month)
}

// TagConfig reads the tag configuration.
func (t *Tracker) TagConfig() (domain.TagConfig, error) {
	return t.tags.Read()
}

// SaveTagConfig replaces the tag configuration.
func (t *Tracker) SaveTagConfig(cfg domain.TagConfig) error {
	return t.tags.Write(cfg)
}

// AddTag adds name to the tag configuration, optionally setting its color.
func (t *Tracker) AddTag(name string, color *string) error {
	return t.tags.AddTag(name, color)
}

// RemoveTag removes name and its color from the tag configuration.
func (t *Tracker) RemoveTag(name string) error {
	return t.tags.RemoveTag(name)
}

// ConfigPath returns the configuration directory.
func (t *Tracker) ConfigPath() string {
	return t.cfg.Dir
}

// WatchTags starts a watcher on the tag configuration file. It runs until
// ctx is done or the watcher is closed; its notification channel is closed
// when it stops.
func (t *Tracker) WatchTags(ctx context.Context, opts ...watcher.Option) (*watcher.Watcher, error) {
	opts = append([]watcher.Option{watcher.WithLogger(t.logger.With("component", "watcher"))}, opts...)
	w, err := watcher.New(t.cfg.Dir, config.TagsFile, opts...)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := w.Run(ctx); err != nil {
			t.logger.Warn("tag watcher stopped", "error", err)
		}
	}()
	return w, nil
}
