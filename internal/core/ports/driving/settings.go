package driving

import "github.com/custodia-labs/noticesync/internal/core/domain"

// SettingsService exposes the runtime configuration.
type SettingsService interface {
	// Get reads and validates current settings.
	Get() (*domain.Settings, error)

	// Reload re-reads the underlying configuration file.
	Reload() error

	// Path returns the configuration file path.
	Path() string
}
