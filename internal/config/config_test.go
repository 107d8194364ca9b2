package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "gemini-2.5-flash", cfg.Suggest.Model)
	assert.InDelta(t, 0.7, cfg.Suggest.Temperature, 1e-6)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Store.Backend, cfg.Store.Backend)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "sqlite"
dir = "/tmp/wintheday"

[log]
level = "debug"
format = "text"

[suggest]
model = "gemini-2.5-pro"
temperature = 0.3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/tmp/wintheday", cfg.Store.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "gemini-2.5-pro", cfg.Suggest.Model)
	assert.InDelta(t, 0.3, cfg.Suggest.Temperature, 1e-6)
	assert.Equal(t, "API_KEY", cfg.Suggest.APIKeyEnv, "unset keys keep defaults")
}

func TestLoad_UnknownKeysWarn(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "sqlite"
flavour = "vanilla"

[extras]
enabled = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	joined := strings.Join(cfg.Warnings, "\n")
	assert.Contains(t, joined, "flavour")
	assert.Contains(t, joined, "extras")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad toml":        "[store\nbackend=",
		"bad backend":     "[store]\nbackend = \"postgres\"\n",
		"bad format":      "[log]\nformat = \"xml\"\n",
		"bad temperature": "[suggest]\ntemperature = 5.0\n",
		"wrong type":      "[suggest]\ntemperature = \"hot\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MY_KEY", "")

	cfg := Default()
	assert.Empty(t, cfg.APIKey())

	t.Setenv("GEMINI_API_KEY", "gem")
	assert.Equal(t, "gem", cfg.APIKey())

	t.Setenv("API_KEY", "primary")
	assert.Equal(t, "primary", cfg.APIKey())

	cfg.Suggest.APIKeyEnv = "MY_KEY"
	assert.Equal(t, "gem", cfg.APIKey())
	t.Setenv("MY_KEY", "mine")
	assert.Equal(t, "mine", cfg.APIKey())
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("WINTHEDAY_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("WINTHEDAY_TEST_KEY"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WINTHEDAY_TEST_KEY=from-dotenv\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-dotenv", os.Getenv("WINTHEDAY_TEST_KEY"))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	t.Setenv("WINTHEDAY_TEST_KEY", "from-shell")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WINTHEDAY_TEST_KEY=from-dotenv\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-shell", os.Getenv("WINTHEDAY_TEST_KEY"))
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/cfg/wintheday/config.toml", DefaultPath())
	assert.Equal(t, "/data/wintheday", DefaultDataDir())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}
