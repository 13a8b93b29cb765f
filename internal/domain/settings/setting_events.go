package settings

import (
	"github.com/storefront/backend/internal/domain/shared"
)

// EventSettingChanged is raised whenever a deployment setting is written.
const EventSettingChanged = "settings.changed"

// SettingChangedEvent carries the name of the changed setting so subscribers
// can invalidate derived caches selectively.
type SettingChangedEvent struct {
	shared.BaseDomainEvent
	Name     string `json:"name"`
	NewValue string `json:"new_value"`
}

// NewSettingChangedEvent creates a new SettingChangedEvent
func NewSettingChangedEvent(s *Setting) *SettingChangedEvent {
	return &SettingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSettingChanged, s.ID, "Setting"),
		Name:            s.Name,
		NewValue:        s.Value,
	}
}
