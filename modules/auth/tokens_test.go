package auth

import (
	"errors"
	"testing"
	"time"

	domain "github.com/example/devtracker/domain/user"
)

func testTokenConfig() TokenConfig {
	config := DefaultTokenConfig()
	config.Secret = "test-secret"
	return config
}

func testAccount() *domain.User {
	return &domain.User{
		ID:    "user-1",
		Email: "owner@example.com",
		Name:  "Owner",
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	manager := NewTokenManager(testTokenConfig())

	pair, err := manager.IssuePair(testAccount())
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want %q", pair.TokenType, "Bearer")
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn = %d, want %d", pair.ExpiresIn, int64((15*time.Minute).Seconds()))
	}

	claims, err := manager.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "owner@example.com")
	}
	// The display name rides in the claims so the dashboard can greet
	// the user without a lookup.
	if claims.Name != "Owner" {
		t.Errorf("Name = %q, want %q", claims.Name, "Owner")
	}

	if _, err := manager.VerifyRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
}

func TestTokenManager_TypeConfusion(t *testing.T) {
	manager := NewTokenManager(testTokenConfig())

	pair, err := manager.IssuePair(testAccount())
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	// A refresh token must never authenticate a request, and an access
	// token must never mint new tokens.
	if _, err := manager.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess(refresh) error = %v, want ErrInvalidToken", err)
	}
	if _, err := manager.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyRefresh(access) error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	manager := NewTokenManager(testTokenConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "not-a-token"},
		{name: "truncated", token: "eyJhbGciOiJIUzI1NiJ9.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.VerifyAccess(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("VerifyAccess(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := NewTokenManager(testTokenConfig())

	other := testTokenConfig()
	other.Secret = "a-different-secret"
	verifier := NewTokenManager(other)

	pair, err := issuer.IssuePair(testAccount())
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	if _, err := verifier.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess() with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManager_Expiry(t *testing.T) {
	config := testTokenConfig()
	config.AccessTTL = -time.Minute
	manager := NewTokenManager(config)

	pair, err := manager.IssuePair(testAccount())
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}

	if _, err := manager.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("VerifyAccess() on expired token error = %v, want ErrExpiredToken", err)
	}
}
