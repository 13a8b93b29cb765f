package models

import (
	"github.com/storefront/backend/internal/domain/settings"
)

// SettingModel is the persistence model for deployment settings.
type SettingModel struct {
	BaseModel
	Name  string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Value string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Setting.
func (m *SettingModel) ToDomain() *settings.Setting {
	return &settings.Setting{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Value:      m.Value,
	}
}

// FromDomain populates the persistence model from a domain Setting.
func (m *SettingModel) FromDomain(s *settings.Setting) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.Value = s.Value
}
