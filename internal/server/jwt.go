package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/job-agent/internal/config"
)

// devTokenPrefix marks a local dev token inside the bearer credential.
const devTokenPrefix = "dev:"

// Claims represents JWT claims with user ID.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTService validates bearer credentials. Signed JWTs are the normal path;
// a bcrypt-checked dev token is accepted when one is configured.
type JWTService struct {
	config   *config.JWTConfig
	devToken *config.DevTokenConfig
}

// NewJWTService creates a new JWT service. devToken may be nil.
func NewJWTService(cfg *config.JWTConfig, devToken *config.DevTokenConfig) *JWTService {
	return &JWTService{
		config:   cfg,
		devToken: devToken,
	}
}

// Authenticate checks the Authorization header of a request and returns the
// token claims. Dev tokens authenticate with nil-UUID claims.
func (s *JWTService) Authenticate(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("missing Authorization header")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, fmt.Errorf("malformed Authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, fmt.Errorf("empty bearer token")
	}

	if rest, ok := strings.CutPrefix(token, devTokenPrefix); ok {
		if s.devToken == nil || !s.devToken.VerifyToken(rest) {
			return nil, fmt.Errorf("invalid dev token")
		}
		return &Claims{}, nil
	}

	return s.ValidateToken(token)
}

// GenerateToken generates a JWT token for the given user ID.
func (s *JWTService) GenerateToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}
