package auth

import (
	"context"
	"errors"
	"testing"

	domain "github.com/example/devtracker/domain/user"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestService builds an AuthService over an in-memory SQLite
// database with the test token config.
func setupTestService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewAuthService(NewUserRepository(db), NewTokenManager(testTokenConfig()))
}

func mustRegister(t *testing.T, svc *AuthService, email, password, name string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), email, password, name)
	if err != nil {
		t.Fatalf("Register(%q) error = %v", email, err)
	}
	return u
}

func TestAuthService_RegisterLoginRoundTrip(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user := mustRegister(t, svc, "owner@example.com", "s3cretpass", "Owner")
	if user.ID == "" {
		t.Error("expected generated user id")
	}
	if user.PasswordHash == "s3cretpass" {
		t.Error("password must not be stored in plain text")
	}

	loggedIn, pair, err := svc.Login(ctx, "owner@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Login returned user %q, want %q", loggedIn.ID, user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected both access and refresh tokens")
	}

	// The identity, including the display name, must survive the
	// stateless validation round trip.
	claims, err := svc.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("claims.Email = %q, want %q", claims.Email, "owner@example.com")
	}
	if claims.Name != "Owner" {
		t.Errorf("claims.Name = %q, want %q", claims.Name, "Owner")
	}
}

func TestAuthService_Register_Rejections(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "owner@example.com", "s3cretpass", "")

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "duplicate email",
			email:    "owner@example.com",
			password: "s3cretpass",
			wantErr:  ErrUserExists,
		},
		{
			name:     "unparseable email",
			email:    "not-an-email",
			password: "s3cretpass",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "missing local part",
			email:    "@example.com",
			password: "s3cretpass",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "short password",
			email:    "new@example.com",
			password: "short",
			wantErr:  ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "owner@example.com", "s3cretpass", "")

	// Wrong password and unknown email are indistinguishable to the caller.
	if _, _, err := svc.Login(ctx, "owner@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "s3cretpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_RefreshTokens(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "owner@example.com", "s3cretpass", "Owner")
	_, pair, err := svc.Login(ctx, "owner@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected fresh access token")
	}

	// An access token must not mint new tokens.
	if _, err := svc.RefreshTokens(ctx, pair.AccessToken); err == nil {
		t.Error("RefreshTokens() accepted an access token")
	}
}

func TestAuthService_RefreshReflectsProfileEdit(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user := mustRegister(t, svc, "owner@example.com", "s3cretpass", "Owner")
	_, pair, err := svc.Login(ctx, "owner@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, user.ID, "Renamed Owner", "owner@example.com"); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	// Outstanding tokens keep the old identity; refreshing picks up the
	// edited profile.
	stale, err := svc.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if stale.Name != "Owner" {
		t.Errorf("stale claims.Name = %q, want %q", stale.Name, "Owner")
	}

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	fresh, err := svc.ValidateToken(ctx, refreshed.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if fresh.Name != "Renamed Owner" {
		t.Errorf("fresh claims.Name = %q, want %q", fresh.Name, "Renamed Owner")
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	user := mustRegister(t, svc, "owner@example.com", "s3cretpass", "Owner")
	mustRegister(t, svc, "taken@example.com", "s3cretpass", "")

	updated, err := svc.UpdateProfile(ctx, user.ID, "New Name", "new@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "New Name" || updated.Email != "new@example.com" {
		t.Errorf("profile = %q/%q, want %q/%q", updated.Name, updated.Email, "New Name", "new@example.com")
	}

	// Login follows the new email, and the hash is untouched.
	if _, _, err := svc.Login(ctx, "new@example.com", "s3cretpass"); err != nil {
		t.Errorf("Login() with new email error = %v", err)
	}

	t.Run("email taken by another account", func(t *testing.T) {
		if _, err := svc.UpdateProfile(ctx, user.ID, "New Name", "taken@example.com"); !errors.Is(err, ErrUserExists) {
			t.Errorf("UpdateProfile() error = %v, want ErrUserExists", err)
		}
	})

	t.Run("keeping own email is not a conflict", func(t *testing.T) {
		if _, err := svc.UpdateProfile(ctx, user.ID, "Another Name", "new@example.com"); err != nil {
			t.Errorf("UpdateProfile() error = %v", err)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		if _, err := svc.UpdateProfile(ctx, user.ID, "New Name", "not-an-email"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("UpdateProfile() error = %v, want ErrInvalidEmail", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		if _, err := svc.UpdateProfile(ctx, "ghost", "Name", "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("UpdateProfile() error = %v, want ErrUserNotFound", err)
		}
	})
}
