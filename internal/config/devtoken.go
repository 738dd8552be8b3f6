// Package config provides dev token bootstrap for local runs without a full
// auth service in front of the control server.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// DevTokenConfig holds the bcrypt hash of a shared local development token.
// When set, requests may authenticate with `Bearer dev:<token>` instead of a
// signed JWT.
type DevTokenConfig struct {
	TokenHash  string
	BcryptCost int
}

// NewDevTokenConfig creates a dev token configuration from environment
// variables. It reads DEV_TOKEN_HASH (optional) and BCRYPT_COST (default: 12).
// A nil config with nil error means no dev token is configured.
func NewDevTokenConfig() (*DevTokenConfig, error) {
	hash := os.Getenv("DEV_TOKEN_HASH")
	if hash == "" {
		return nil, nil
	}

	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &DevTokenConfig{
		TokenHash:  hash,
		BcryptCost: cost,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *DevTokenConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// HashToken hashes a token for use as DEV_TOKEN_HASH.
func (c *DevTokenConfig) HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken verifies a presented token against the stored hash.
func (c *DevTokenConfig) VerifyToken(token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.TokenHash), []byte(token)) == nil
}
