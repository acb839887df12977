package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeUniverseName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple lowercase",
			input:    "aldera",
			expected: "aldera",
		},
		{
			name:     "uppercase converted",
			input:    "Aldera",
			expected: "aldera",
		},
		{
			name:     "spaces to underscores",
			input:    "the long dark",
			expected: "the_long_dark",
		},
		{
			name:     "hyphens to underscores",
			input:    "iron-throne",
			expected: "iron_throne",
		},
		{
			name:     "special characters removed",
			input:    "my@universe!",
			expected: "myuniverse",
		},
		{
			name:     "consecutive underscores collapsed",
			input:    "my--universe",
			expected: "my_universe",
		},
		{
			name:     "leading trailing underscores trimmed",
			input:    "-aldera-",
			expected: "aldera",
		},
		{
			name:     "empty string returns default",
			input:    "",
			expected: "default",
		},
		{
			name:     "only special chars returns default",
			input:    "!!!",
			expected: "default",
		},
		{
			name:     "complex mixed input",
			input:    "Iron-Throne (Book 1)",
			expected: "iron_throne_book_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUniverseName(tt.input))
		})
	}
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, "/home/user/project/.chronicle", ConfigDir("/home/user/project"))
	assert.Equal(t, "/home/user/project/.chronicle/config.yaml", ConfigFilePath("/home/user/project"))
	assert.Equal(t, "/home/user/project/.chronicle/universes.yaml", UniversesFilePath("/home/user/project"))
}

func TestConfig_DatabasePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/base", DefaultConfigDir, DefaultDatabaseFile), cfg.DatabasePath("/base"))

	cfg.SQLite.Path = "/custom/db.sqlite"
	assert.Equal(t, "/custom/db.sqlite", cfg.DatabasePath("/base"))
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, cfg.SQLite.Path)
	})

	t.Run("reads yaml and applies env override", func(t *testing.T) {
		base := t.TempDir()
		require.NoError(t, os.MkdirAll(ConfigDir(base), 0755))
		require.NoError(t, os.WriteFile(ConfigFilePath(base), []byte("sqlite:\n  path: /from/yaml.db\n"), 0644))

		cfg, err := Load(base)
		require.NoError(t, err)
		assert.Equal(t, "/from/yaml.db", cfg.SQLite.Path)

		t.Setenv("CHRONICLE_DB_PATH", "/from/env.db")
		cfg, err = Load(base)
		require.NoError(t, err)
		assert.Equal(t, "/from/env.db", cfg.SQLite.Path)
	})
}

func TestUniversesConfig(t *testing.T) {
	t.Run("touch promotes and deduplicates", func(t *testing.T) {
		u := &UniversesConfig{}
		u.Touch("aldera")
		u.Touch("mistlands")
		u.Touch("aldera")

		assert.Equal(t, "aldera", u.Current)
		assert.Equal(t, []string{"aldera", "mistlands"}, u.Recent)
	})

	t.Run("forget clears current and falls back", func(t *testing.T) {
		u := &UniversesConfig{}
		u.Touch("aldera")
		u.Touch("mistlands")

		u.Forget("mistlands")

		assert.Equal(t, "aldera", u.Current)
		assert.Equal(t, []string{"aldera"}, u.Recent)
	})

	t.Run("round trips through the registry file", func(t *testing.T) {
		base := t.TempDir()
		u := &UniversesConfig{}
		u.Touch("aldera")
		require.NoError(t, u.Save(base))

		loaded, err := LoadUniverses(base)
		require.NoError(t, err)
		assert.Equal(t, "aldera", loaded.Current)
	})

	t.Run("missing file yields an empty registry", func(t *testing.T) {
		loaded, err := LoadUniverses(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, loaded.Current)
	})
}
