package server

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-agent/internal/config"
)

func testJWTService(t *testing.T, devToken *config.DevTokenConfig) *JWTService {
	t.Helper()
	return NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}, devToken)
}

func TestJWT_GenerateAndValidate(t *testing.T) {
	svc := testJWTService(t, nil)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWT_WrongSecretRejected(t *testing.T) {
	svc := testJWTService(t, nil)
	token, err := svc.GenerateToken(uuid.New())
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "different", ExpirationHours: 1}, nil)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestAuthenticate_BearerToken(t *testing.T) {
	svc := testJWTService(t, nil)
	userID := uuid.New()
	token, err := svc.GenerateToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/tabs", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims, err := svc.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestAuthenticate_MalformedHeaders(t *testing.T) {
	svc := testJWTService(t, nil)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer  "} {
		req := httptest.NewRequest("GET", "/tabs", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		_, err := svc.Authenticate(req)
		assert.Error(t, err, "header %q", header)
	}
}

func TestAuthenticate_DevToken(t *testing.T) {
	dev := &config.DevTokenConfig{BcryptCost: 10}
	hash, err := dev.HashToken("local-secret")
	require.NoError(t, err)
	dev.TokenHash = hash

	svc := testJWTService(t, dev)

	req := httptest.NewRequest("GET", "/tabs", nil)
	req.Header.Set("Authorization", "Bearer dev:local-secret")

	claims, err := svc.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, claims.UserID)

	req.Header.Set("Authorization", "Bearer dev:wrong")
	_, err = svc.Authenticate(req)
	assert.Error(t, err)
}

func TestAuthenticate_DevTokenDisabled(t *testing.T) {
	svc := testJWTService(t, nil)

	req := httptest.NewRequest("GET", "/tabs", nil)
	req.Header.Set("Authorization", "Bearer dev:anything")

	_, err := svc.Authenticate(req)
	assert.Error(t, err)
}
