package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours)
}

func TestNewJWTConfig_CustomExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "168")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, 168, cfg.ExpirationHours)
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := NewJWTConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_InvalidExpiration(t *testing.T) {
	for _, bad := range []string{"invalid", "0", "-1", "12.5"} {
		t.Setenv("JWT_SECRET", "test-secret-key")
		t.Setenv("JWT_EXPIRATION_HOURS", bad)

		cfg, err := NewJWTConfig()
		require.Error(t, err, bad)
		assert.Nil(t, cfg)
	}
}
