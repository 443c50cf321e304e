package settings

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/devtracker/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores one preferences row per account.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs the schema migration for the settings table.
func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&domain.Settings{}); err != nil {
		return fmt.Errorf("failed to migrate settings table: %w", err)
	}
	return nil
}

// Find retrieves the stored preferences for userID. found is false when
// the account has never changed anything.
func (r *Repository) Find(ctx context.Context, userID string) (*domain.Settings, bool, error) {
	var s domain.Settings
	result := r.db.WithContext(ctx).First(&s, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find settings: %w", result.Error)
	}
	return &s, true, nil
}

// Upsert inserts or replaces the preferences row for s.UserID.
func (r *Repository) Upsert(ctx context.Context, s *domain.Settings) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(s)
	if result.Error != nil {
		return fmt.Errorf("failed to save settings: %w", result.Error)
	}
	return nil
}
