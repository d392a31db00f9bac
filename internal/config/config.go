// Package config resolves where the tracker keeps its files and how it logs.
//
// Values come from the environment:
//
//	EVIDENCE_CONFIG_DIR   configuration directory (default <UserConfigDir>/evidence-tracker)
//	EVIDENCE_LOG_LEVEL    debug, info, warn or error (default info)
//	EVIDENCE_LOG_FORMAT   text or json (default text)
//
// Command-line flags override them after Load.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/evidence-tracker/internal/domain"
)

const (
	// AppName names the directory under the platform configuration root.
	AppName = "evidence-tracker"

	// DatabaseFile is the entry database file name.
	DatabaseFile = "entries.db"

	// TagsFile is the tag configuration file name.
	TagsFile = "tags.json"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// userConfigDir is replaced in tests.
var userConfigDir = os.UserConfigDir

// Config is the resolved application configuration.
type Config struct {
	Dir       string `env:"EVIDENCE_CONFIG_DIR"`
	LogLevel  string `env:"EVIDENCE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"EVIDENCE_LOG_FORMAT" envDefault:"text"`
}

// Load reads the environment and fills in the default directory.
// Failures are domain.CodeSetup errors.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, domain.Wrap(domain.CodeSetup, "failed to load configuration", err)
	}

	if cfg.Dir == "" {
		root, err := userConfigDir()
		if err != nil {
			return Config{}, domain.Wrap(domain.CodeSetup, "failed to resolve config directory", err)
		}
		cfg.Dir = filepath.Join(root, AppName)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DatabasePath returns the entry database path.
func (c Config) DatabasePath() string {
	return filepath.Join(c.Dir, DatabaseFile)
}

// TagsPath returns the tag configuration file path.
func (c Config) TagsPath() string {
	return filepath.Join(c.Dir, TagsFile)
}

// Logger builds a logger writing to w with the configured level and format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.LogFormat) {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", c.LogFormat)
	}
}
