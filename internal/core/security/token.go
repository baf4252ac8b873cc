// Package security issues and validates the bearer tokens carried by API callers.
package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "slice/internal/core/context"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig holds signing configuration.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// DefaultTokenConfig returns a config with a 12h lifetime.
func DefaultTokenConfig(secret string) TokenConfig {
	return TokenConfig{
		Secret: secret,
		Issuer: "slice",
		TTL:    12 * time.Hour,
	}
}

// Claims are the JWT claims of a session.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"name,omitempty"`
	Role     string `json:"role"`
	BranchID string `json:"bid,omitempty"`
}

// TokenService signs and validates HS256 tokens.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService creates a token service. An empty secret is rejected.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if config.Secret == "" {
		return nil, errors.New("token secret is empty")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTokenConfig(config.Secret).TTL
	}
	return &TokenService{config: config, now: time.Now}, nil
}

// Issue signs a token for user. Returns the token and its expiry.
func (s *TokenService) Issue(user appctx.UserContext) (string, time.Time, error) {
	if !validRole(user.Role) {
		return "", time.Time{}, fmt.Errorf("unknown role %q", user.Role)
	}

	now := s.now()
	expiresAt := now.Add(s.config.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.UserID,
			ID:        user.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: user.Username,
		Role:     user.Role,
		BranchID: user.BranchID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses tokenString and returns the caller it identifies.
func (s *TokenService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || !validRole(claims.Role) {
		return nil, ErrInvalidToken
	}

	return &appctx.UserContext{
		UserID:    claims.Subject,
		Username:  claims.Username,
		BranchID:  claims.BranchID,
		Role:      claims.Role,
		SessionID: claims.ID,
	}, nil
}

func validRole(role string) bool {
	switch role {
	case appctx.RoleAdmin, appctx.RoleManager, appctx.RoleCashier:
		return true
	}
	return false
}
