package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements customer.RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Create creates a new role
func (r *GormRoleRepository) Create(ctx context.Context, role *customer.Role) error {
	model := models.RoleModelFromDomain(role)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update updates an existing role
func (r *GormRoleRepository) Update(ctx context.Context, role *customer.Role) error {
	model := models.RoleModelFromDomain(role)
	result := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("id = ? AND version = ?", role.ID, role.Version-1).
		Select("name", "system_name", "active", "is_system_role", "tax_display_type", "version", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySystemName finds a role by its system name
func (r *GormRoleRepository) FindBySystemName(ctx context.Context, systemName string) (*customer.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("system_name = ?", systemName).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all roles
func (r *GormRoleRepository) FindAll(ctx context.Context) ([]*customer.Role, error) {
	var roleModels []models.RoleModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&roleModels).Error; err != nil {
		return nil, err
	}

	roles := make([]*customer.Role, len(roleModels))
	for i := range roleModels {
		roles[i] = roleModels[i].ToDomain()
	}
	return roles, nil
}

var _ customer.RoleRepository = (*GormRoleRepository)(nil)
