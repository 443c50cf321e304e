package settings

import (
	domain "github.com/example/devtracker/domain/user"
)

// Patch carries a partial preferences edit. Nil fields are left
// unchanged.
type Patch struct {
	Theme              *string `json:"theme,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	TaskReminders      *bool   `json:"task_reminders,omitempty"`
}

// GetSettingsRequest is the container request for reading preferences.
type GetSettingsRequest struct {
	UserID string `json:"user_id"`
}

// UpdateSettingsRequest is the container request for a preferences edit.
type UpdateSettingsRequest struct {
	UserID string `json:"user_id"`
	Patch  Patch  `json:"patch"`
}

// SettingsResponse is the container response carrying the effective
// preferences.
type SettingsResponse struct {
	Settings domain.Settings `json:"settings"`
}
