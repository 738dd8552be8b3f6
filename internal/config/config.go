// Package config provides configuration loading and validation for the CLI
// and the control server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents settings that can be loaded from a JSON file or the
// environment. All fields are optional; missing values use defaults or must
// be provided via CLI flags.
type Config struct {
	// Connections
	DatabaseURL        string `json:"database_url,omitempty"`         // PostgreSQL connection URL
	RemoteDebuggingURL string `json:"remote_debugging_url,omitempty"` // Chrome DevTools websocket/HTTP endpoint
	CompileServiceURL  string `json:"compile_service_url,omitempty"`  // Remote LaTeX compile service, empty for local pdflatex

	// Collaborators
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Gemini API key for scoring and generation

	// Server
	Port int `json:"port,omitempty"` // Control server listen port

	// Agent tuning
	DebounceMillis   int `json:"debounce_millis,omitempty"`    // Detection debounce window
	SecondPassMillis int `json:"second_pass_millis,omitempty"` // Delay before the autofill second pass

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// DefaultPort is used when neither the config file nor the environment sets one.
const DefaultPort = 8080

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills unset fields from environment variables. Config file values
// win over the environment; CLI flags are merged later and win over both.
func (c *Config) FromEnv() error {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RemoteDebuggingURL == "" {
		c.RemoteDebuggingURL = os.Getenv("REMOTE_DEBUGGING_URL")
	}
	if c.CompileServiceURL == "" {
		c.CompileServiceURL = os.Getenv("COMPILE_SERVICE_URL")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("invalid PORT: %v", err)
			}
			c.Port = port
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Required fields are enforced by the commands that need them, not here.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.DebounceMillis < 0 {
		return fmt.Errorf("config error: 'debounce_millis' must be non-negative")
	}
	if c.SecondPassMillis < 0 {
		return fmt.Errorf("config error: 'second_pass_millis' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RemoteDebuggingURL == "" {
		result.RemoteDebuggingURL = defaults.RemoteDebuggingURL
	}
	if result.CompileServiceURL == "" {
		result.CompileServiceURL = defaults.CompileServiceURL
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.DebounceMillis == 0 {
		result.DebounceMillis = defaults.DebounceMillis
	}
	if result.SecondPassMillis == 0 {
		result.SecondPassMillis = defaults.SecondPassMillis
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
