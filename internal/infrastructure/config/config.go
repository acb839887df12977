// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for chronicle configuration.
	DefaultConfigDir = ".chronicle"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultUniversesFile is the default universe registry file name.
	DefaultUniversesFile = "universes.yaml"
	// DefaultDatabaseFile is the default SQLite database file name.
	DefaultDatabaseFile = "chronicle.db"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Empty means the default
	// path inside the config directory.
	Path string `yaml:"path,omitempty"`
}

// ExportConfig holds defaults for archive export.
type ExportConfig struct {
	// Dir is where exports land when no explicit path is given.
	Dir string `yaml:"dir,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{}
}

// Load loads configuration from the .chronicle directory in the given path.
// A missing config file yields defaults rather than an error, so read-only
// commands work before `chronicle init`.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	cfg := Default()
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CHRONICLE_DB_PATH"); path != "" {
		c.SQLite.Path = path
	}
}

// DatabasePath returns the SQLite path to use, falling back to the default
// location under the config directory.
func (c *Config) DatabasePath(basePath string) string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(basePath, DefaultConfigDir, DefaultDatabaseFile)
}

// ConfigDir returns the path to the .chronicle config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// UniversesFilePath returns the path to the universe registry file.
func UniversesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultUniversesFile)
}

// SanitizeUniverseName converts a universe name to a safe file-name slug.
func SanitizeUniverseName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "default"
	}
	return name
}

// DefaultExportPath returns the export file path for a universe when the
// caller gives none.
func (c *Config) DefaultExportPath(basePath, universeName string) string {
	dir := c.Export.Dir
	if dir == "" {
		dir = filepath.Join(basePath, DefaultConfigDir, "exports")
	}
	return filepath.Join(dir, SanitizeUniverseName(universeName)+".json")
}
