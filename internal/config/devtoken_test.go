package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevTokenConfig_Unset(t *testing.T) {
	t.Setenv("DEV_TOKEN_HASH", "")

	cfg, err := NewDevTokenConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestNewDevTokenConfig_InvalidCost(t *testing.T) {
	t.Setenv("DEV_TOKEN_HASH", "$2a$12$notarealhash")

	for _, bad := range []string{"abc", "9", "15"} {
		t.Setenv("BCRYPT_COST", bad)
		_, err := NewDevTokenConfig()
		assert.Error(t, err, bad)
	}
}

func TestDevToken_HashAndVerify(t *testing.T) {
	cfg := &DevTokenConfig{BcryptCost: 10}

	hash, err := cfg.HashToken("local-dev-token")
	require.NoError(t, err)

	cfg.TokenHash = hash
	assert.True(t, cfg.VerifyToken("local-dev-token"))
	assert.False(t, cfg.VerifyToken("wrong-token"))
}
