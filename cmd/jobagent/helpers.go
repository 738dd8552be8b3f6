package main

import (
	"fmt"

	"github.com/jonathan/job-agent/internal/config"
)

// loadConfig merges the optional config file with the environment.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.FromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(config.Config{})
	if verbose {
		merged.Verbose = true
	}
	return &merged, nil
}

// requireField fails with a uniform message when a required setting is missing.
func requireField(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s is required (set it in the config file or environment)", name)
	}
	return nil
}
