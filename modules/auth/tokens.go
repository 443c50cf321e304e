package auth

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/devtracker/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenConfig holds signing configuration for the token manager.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// DefaultTokenConfig returns the development defaults. The secret must
// come from JWT_SECRET_KEY in any real deployment.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		Secret:     "devtracker-insecure-default-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		Issuer:     "devtracker",
	}
}

// TokenClaims is the devtracker token payload: the account identity
// plus a type discriminator so a refresh token can never pass as an
// access token.
type TokenClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 token pairs. Verification is
// stateless: signature, expiry and token type only, no session table.
type TokenManager struct {
	config TokenConfig
}

// NewTokenManager creates a TokenManager with the given configuration.
func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{config: config}
}

// IssuePair signs a fresh access/refresh pair for the user. The display
// name rides along in the claims so the dashboard can greet the user
// without a second lookup.
func (m *TokenManager) IssuePair(u *domain.User) (*domain.TokenPair, error) {
	access, err := m.sign(u, tokenTypeAccess, m.config.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := m.sign(u, tokenTypeRefresh, m.config.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.config.AccessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// VerifyAccess verifies an access token and returns its claims.
func (m *TokenManager) VerifyAccess(tokenString string) (*TokenClaims, error) {
	return m.verify(tokenString, tokenTypeAccess)
}

// VerifyRefresh verifies a refresh token and returns its claims.
func (m *TokenManager) VerifyRefresh(tokenString string) (*TokenClaims, error) {
	return m.verify(tokenString, tokenTypeRefresh)
}

func (m *TokenManager) sign(u *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(m.config.Secret))
}

// verify parses the token and enforces the expected type. Type
// mismatches report ErrInvalidToken, indistinguishable from a bad
// signature.
func (m *TokenManager) verify(tokenString, wantType string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
