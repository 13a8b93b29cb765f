package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements settings.Repository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// Get returns the raw value of a setting, or shared.ErrNotFound
func (r *GormSettingRepository) Get(ctx context.Context, name string) (string, error) {
	var model models.SettingModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", strings.ToLower(name)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return model.Value, nil
}

// Set writes a setting, creating it if absent
func (r *GormSettingRepository) Set(ctx context.Context, name, value string) (*settings.Setting, error) {
	setting, err := settings.NewSetting(name, value)
	if err != nil {
		return nil, err
	}

	model := &models.SettingModel{}
	model.FromDomain(setting)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return nil, err
	}
	return setting, nil
}

// GetAll returns all settings keyed by name
func (r *GormSettingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var settingModels []models.SettingModel
	if err := r.db.WithContext(ctx).Find(&settingModels).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string, len(settingModels))
	for _, m := range settingModels {
		result[m.Name] = m.Value
	}
	return result, nil
}

var _ settings.Repository = (*GormSettingRepository)(nil)
