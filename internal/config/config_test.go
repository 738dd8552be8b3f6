package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"database_url": "postgres://localhost/jobagent",
		"remote_debugging_url": "http://localhost:9222",
		"port": 9090,
		"debounce_millis": 400,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://localhost/jobagent", cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:9222", cfg.RemoteDebuggingURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 400, cfg.DebounceMillis)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestFromEnv_FillsUnsetFields(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/jobagent")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "7070")

	cfg := &Config{DatabaseURL: "postgres://file/jobagent"}
	require.NoError(t, cfg.FromEnv())

	// File value wins, env fills the gaps.
	assert.Equal(t, "postgres://file/jobagent", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
	assert.Equal(t, 7070, cfg.Port)
}

func TestFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg := &Config{}
	assert.Error(t, cfg.FromEnv())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&Config{Port: 8080}).Validate())
	assert.Error(t, (&Config{Port: 70000}).Validate())
	assert.Error(t, (&Config{DebounceMillis: -1}).Validate())
	assert.Error(t, (&Config{SecondPassMillis: -1}).Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: 9090}
	merged := cfg.MergeWithDefaults(Config{
		DatabaseURL: "postgres://default/jobagent",
		Port:        8081,
	})

	// Own values win, defaults fill in empty fields.
	assert.Equal(t, "postgres://default/jobagent", merged.DatabaseURL)
	assert.Equal(t, 9090, merged.Port)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	empty := Config{}
	merged := empty.MergeWithDefaults(Config{})
	assert.Equal(t, DefaultPort, merged.Port)
}
