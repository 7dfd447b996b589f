// Package config loads ribforge configuration. Built-in defaults are
// embedded and layered under the user's config file and an optional
// explicit file, later layers overriding earlier ones.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	ribErrors "github.com/arthur-debert/ribforge/pkg/errors"
)

// Config is the full ribforge configuration
type Config struct {
	Export   ExportConfig   `koanf:"export"`
	Pipeline PipelineConfig `koanf:"pipeline"`
}

// ExportConfig controls export-tree provisioning and command execution
type ExportConfig struct {
	// Launcher is the aggregate replay script name at the export root
	Launcher string `koanf:"launcher"`

	// Shell runs generated command scripts
	Shell string `koanf:"shell"`

	// Clean and Purge are default bucket-key policies for prepare
	Clean []string `koanf:"clean"`
	Purge []string `koanf:"purge"`

	// PollIntervalMS is the cancellation check interval while a
	// command's process runs
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// TargetGzip treats files matched by deferred target regex rules
	// as gzip-compressed
	TargetGzip bool `koanf:"target_gzip"`
}

// PipelineConfig controls pipeline discovery
type PipelineConfig struct {
	// SearchPaths are scanned in order for *.xml pipeline files
	SearchPaths []string `koanf:"search_paths"`
}

// PollInterval returns the poll interval as a duration, never below 1ms
func (e ExportConfig) PollInterval() time.Duration {
	if e.PollIntervalMS < 1 {
		return time.Millisecond
	}
	return time.Duration(e.PollIntervalMS) * time.Millisecond
}

// UserConfigPath returns the per-user config file location. A
// XDG_CONFIG_HOME set after process start wins over the xdg library's
// cached value.
func UserConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, "ribforge", "config.toml")
}

// Load builds the configuration: embedded defaults, then the user
// config file if present, then the explicit file if given. A non-empty
// explicit path must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, ribErrors.Wrap(err, ribErrors.ErrConfigLoad, "failed to load built-in defaults")
	}

	userPath := UserConfigPath()
	if _, err := os.Stat(userPath); err == nil {
		if err := k.Load(file.Provider(userPath), toml.Parser()); err != nil {
			return nil, ribErrors.Wrap(err, ribErrors.ErrConfigLoad, "failed to load user config").
				WithDetail("file", userPath)
		}
	}

	if explicit != "" {
		if err := k.Load(file.Provider(explicit), toml.Parser()); err != nil {
			return nil, ribErrors.Wrap(err, ribErrors.ErrConfigLoad, "failed to load config file").
				WithDetail("file", explicit)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, ribErrors.Wrap(err, ribErrors.ErrConfigLoad, "failed to decode configuration")
	}
	return &cfg, nil
}

// Default returns the embedded defaults alone, ignoring any user or
// explicit config files
func Default() *Config {
	k := koanf.New(".")
	// The embedded defaults are a compile-time asset; they always parse.
	_ = k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser())
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}
