// Package watcher reports external changes to the tag configuration file.
//
// A Watcher observes one directory, non-recursively, and posts a
// Notification each time the watched file is written or re-created.
// Notifications are fire-and-forget: when the consumer falls behind and the
// buffer is full, new ones are dropped. There is no debouncing.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// EventTagsChanged names the notification posted when the tag file changes.
const EventTagsChanged = "tags-config-changed"

// DefaultBuffer is the notification channel capacity.
const DefaultBuffer = 16

// Notification is posted once per observed change.
type Notification struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// Watcher observes a directory for changes to one file.
type Watcher struct {
	dir      string
	filename string
	fsw      *fsnotify.Watcher
	out      chan Notification
	buffer   int
	newID    func() string
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for steady-state errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithIDGenerator sets the notification ID source.
func WithIDGenerator(gen func() string) Option {
	return func(w *Watcher) {
		if gen != nil {
			w.newID = gen
		}
	}
}

// WithBuffer sets the notification channel capacity.
func WithBuffer(n int) Option {
	return func(w *Watcher) {
		if n >= 0 {
			w.buffer = n
		}
	}
}

// New creates dir if needed and registers a watch on it.
// Any failure is a domain.CodeSetup error.
func New(dir, filename string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dir:      dir,
		filename: filename,
		buffer:   DefaultBuffer,
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.out = make(chan Notification, w.buffer)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.Wrap(domain.CodeSetup, "failed to create watch directory", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.Wrap(domain.CodeSetup, "failed to create watcher", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, domain.Wrap(domain.CodeSetup, "failed to watch path", err)
	}
	w.fsw = fsw

	return w, nil
}

// Notifications returns the channel notifications are posted on. It is
// closed when Run returns.
func (w *Watcher) Notifications() <-chan Notification {
	return w.out
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return filepath.Join(w.dir, w.filename)
}

// Run processes filesystem events until ctx is done or Close is called.
// Errors reported by the platform are logged and otherwise ignored.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.out)

	for {
		select {
		case <-ctx.Done():
			w.Close()
			return nil
		case <-w.done:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

// Close stops the watch. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// handle posts a notification for writes and re-creations of the watched
// file. Editors that save by rename surface as Create.
func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Base(ev.Name) != w.filename {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	n := Notification{ID: w.newID(), Name: EventTagsChanged, Path: w.Path()}
	select {
	case w.out <- n:
		w.logger.Debug("tags file changed", "path", n.Path, "id", n.ID, "op", ev.Op.String())
	default:
		w.logger.Debug("notification dropped", "path", n.Path, "op", ev.Op.String())
	}
}
