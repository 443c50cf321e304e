package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/devtracker/domain/user"
)

// ErrUnknownTheme is returned when a patch names a theme the dashboard
// does not understand.
var ErrUnknownTheme = errors.New("unknown theme")

// Service resolves effective preferences: stored row when one exists,
// defaults otherwise.
type Service struct {
	repo *Repository
}

// NewService creates a new settings Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the effective preferences for userID.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Settings, error) {
	stored, found, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		defaults := domain.DefaultSettings(userID)
		return &defaults, nil
	}
	return stored, nil
}

// Update applies a partial edit on top of the effective preferences and
// persists the result. Nil patch fields are left unchanged.
func (s *Service) Update(ctx context.Context, userID string, patch Patch) (*domain.Settings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Theme != nil {
		if !domain.ValidTheme(*patch.Theme) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, *patch.Theme)
		}
		current.Theme = *patch.Theme
	}
	if patch.EmailNotifications != nil {
		current.EmailNotifications = *patch.EmailNotifications
	}
	if patch.TaskReminders != nil {
		current.TaskReminders = *patch.TaskReminders
	}
	current.UpdatedAt = time.Now()

	if err := s.repo.Upsert(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
