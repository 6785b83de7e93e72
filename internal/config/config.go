// Package config loads the mockstore CLI configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath is the config file the CLI reads when --config is not given.
const DefaultPath = "mockstore.toml"

type Config struct {
	Harness HarnessConfig `toml:"harness"`
	Archive ArchiveConfig `toml:"archive"`
	Log     LogConfig     `toml:"log"`
}

type HarnessConfig struct {
	ScenariosDir         string `toml:"scenarios_dir"`
	GoldenDir            string `toml:"golden_dir"`
	Filter               string `toml:"filter"`
	SettleTimeoutSeconds int    `toml:"settle_timeout_seconds"`
}

type ArchiveConfig struct {
	DBPath  string `toml:"db_path"`
	Enabled bool   `toml:"enabled"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

func DefaultConfig() Config {
	return Config{
		Harness: HarnessConfig{
			ScenariosDir:         "scenarios",
			GoldenDir:            "testdata/golden",
			SettleTimeoutSeconds: 5,
		},
		Archive: ArchiveConfig{
			DBPath: "mockstore.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadFrom reads path over the defaults. A missing file yields the defaults;
// keys the config does not know are reported as warnings, not errors.
func LoadFrom(path string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	md, err := toml.Decode(string(data), &result.Config)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	for _, key := range md.Undecoded() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key.String()))
	}

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

// SlogLevel maps Log.Level to a slog level.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func validate(cfg *Config) error {
	var errs []string

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level))
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", cfg.Log.Format))
	}

	if cfg.Harness.SettleTimeoutSeconds < 1 {
		errs = append(errs, fmt.Sprintf("harness.settle_timeout_seconds must be at least 1, got %d", cfg.Harness.SettleTimeoutSeconds))
	}

	if cfg.Archive.Enabled && cfg.Archive.DBPath == "" {
		errs = append(errs, "archive.db_path is required when archive.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
