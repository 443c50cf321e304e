package user

import "time"

// Theme values the dashboard understands.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Settings are per-account preferences. A row exists only once the
// user changes something; until then the defaults apply implicitly.
type Settings struct {
	UserID             string    `gorm:"primaryKey;type:text" json:"user_id"`
	Theme              string    `gorm:"not null;type:text" json:"theme"`
	EmailNotifications bool      `gorm:"not null" json:"email_notifications"`
	TaskReminders      bool      `gorm:"not null" json:"task_reminders"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName returns the table name for the Settings entity.
func (Settings) TableName() string {
	return "user_settings"
}

// DefaultSettings returns the preferences every account starts with.
func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:             userID,
		Theme:              ThemeSystem,
		EmailNotifications: true,
		TaskReminders:      true,
	}
}

// ValidTheme reports whether theme is one of the known values.
func ValidTheme(theme string) bool {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}
