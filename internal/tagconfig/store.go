package tagconfig

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/evidence-tracker/internal/domain"
)

// FileName is the base name of the tag configuration file.
const FileName = "tags.json"

//go:embed default_tags.json
var defaultTags []byte

// Store reads and writes <dir>/tags.json.
type Store struct {
	dir      string
	defaults []byte
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefault replaces the embedded default returned when no file exists.
func WithDefault(data []byte) Option {
	return func(s *Store) {
		s.defaults = data
	}
}

// New returns a Store for the configuration directory dir. The directory is
// created on first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{dir: dir, defaults: defaultTags, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the configuration directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the path of the tag configuration file.
func (s *Store) Path() string { return filepath.Join(s.dir, FileName) }

// Default returns the default tag configuration compiled into the binary.
func Default() (domain.TagConfig, error) {
	return Parse(defaultTags)
}

// Read returns the current tag configuration. When the file does not exist
// the default is returned.
func (s *Store) Read() (domain.TagConfig, error) {
	data, err := os.ReadFile(s.Path())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("tag config file missing, using default", "path", s.Path())
		return Parse(s.defaults)
	case err != nil:
		return domain.TagConfig{}, domain.Wrap(domain.CodeIO, "failed to read tags file", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.TagConfig{}, err
	}
	s.logger.Debug("read tag config", "path", s.Path(), "tags", len(cfg.AvailableTags))
	return cfg, nil
}

// Write replaces the file with cfg, creating the directory as needed.
// Duplicate tag names are rejected before anything is written.
func (s *Store) Write(cfg domain.TagConfig) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.Wrap(domain.CodeIO, "failed to create config directory", err)
	}
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		return domain.Wrap(domain.CodeIO, "failed to write tags file", err)
	}

	s.logger.Debug("wrote tag config", "path", s.Path(), "tags", len(cfg.AvailableTags))
	return nil
}

// AddTag appends name if absent and sets its color when color is non-nil.
func (s *Store) AddTag(name string, color *string) error {
	cfg, err := s.Read()
	if err != nil {
		return err
	}
	cfg.AddTag(name, color)
	return s.Write(cfg)
}

// RemoveTag drops name and its color. Unknown names still rewrite the file.
func (s *Store) RemoveTag(name string) error {
	cfg, err := s.Read()
	if err != nil {
		return err
	}
	cfg.RemoveTag(name)
	return s.Write(cfg)
}

// Marshal serializes cfg as indented JSON with a trailing newline.
// Nil collections are written as [] and {}.
func Marshal(cfg domain.TagConfig) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, domain.Wrap(domain.CodeParse, "invalid tag configuration", err)
	}
	cfg.Normalize()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, domain.Wrap(domain.CodeParse, "failed to serialize tag configuration", fmt.Errorf("marshal: %w", err))
	}
	return append(data, '\n'), nil
}
