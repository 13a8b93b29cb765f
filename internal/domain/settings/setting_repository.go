package settings

import "context"

// Repository defines the interface for setting persistence
type Repository interface {
	// Get returns the raw value of a setting, or shared.ErrNotFound
	Get(ctx context.Context, name string) (string, error)

	// Set writes a setting, creating it if absent
	Set(ctx context.Context, name, value string) (*Setting, error)

	// GetAll returns all settings keyed by name
	GetAll(ctx context.Context) (map[string]string, error)
}
