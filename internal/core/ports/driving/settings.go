package driving

import "github.com/custodia-labs/shelf/internal/core/domain"

// SettingsService manages pipeline settings.
type SettingsService interface {
	// Get returns the configured settings layered over the defaults.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// Set stores a single configuration key after checking it is known.
	Set(key string, value any) error

	// Keys lists the recognised configuration keys in sorted order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
