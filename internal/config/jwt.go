package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultJWTExpirationHours is used when JWT_EXPIRATION_HOURS is unset.
const DefaultJWTExpirationHours = 24

// JWTConfig holds the material for bearer token validation on the control
// server. Token issuance happens outside this process; `jobagent token`
// exists only for local development.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS from
// the environment.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	hours := DefaultJWTExpirationHours
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		if parsed < 1 {
			return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", parsed)
		}
		hours = parsed
	}

	return &JWTConfig{Secret: secret, ExpirationHours: hours}, nil
}
