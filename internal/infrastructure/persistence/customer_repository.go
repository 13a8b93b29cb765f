package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update updates an existing customer
func (r *GormCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	model := models.CustomerModelFromDomain(c)
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Select("email", "username", "active", "deleted", "client_fingerprint",
			"last_ip_address", "last_activity_at", "version", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a customer by ID, with roles and attributes loaded
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindByGUID finds a customer by its stable public GUID
func (r *GormCustomerRepository) FindByGUID(ctx context.Context, guid uuid.UUID) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("customer_guid = ?", guid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindBySystemName finds a system account by its system name
func (r *GormCustomerRepository) FindBySystemName(ctx context.Context, systemName string) (*customer.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("is_system_account = ? AND system_name = ?", true, systemName).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindByEmail finds a customer by email address
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("email = ? AND deleted = ?", strings.ToLower(email), false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindByFingerprint finds the most recent customer for a client
// fingerprint whose activity falls within maxAge
func (r *GormCustomerRepository) FindByFingerprint(ctx context.Context, fingerprint string, maxAge time.Duration) (*customer.Customer, error) {
	if fingerprint == "" {
		return nil, shared.ErrNotFound
	}
	cutoff := time.Now().Add(-maxAge)

	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("client_fingerprint = ? AND deleted = ? AND last_activity_at >= ?", fingerprint, false, cutoff).
		Order("last_activity_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// SaveAttribute persists a single generic attribute for a customer
func (r *GormCustomerRepository) SaveAttribute(ctx context.Context, customerID uuid.UUID, key, value string) error {
	now := time.Now()
	attr := models.GenericAttributeModel{
		ID:         uuid.New(),
		CustomerID: customerID,
		Key:        key,
		Value:      value,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&attr).Error
}

// DeleteAttribute removes a generic attribute from a customer
func (r *GormCustomerRepository) DeleteAttribute(ctx context.Context, customerID uuid.UUID, key string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND key = ?", customerID, key).
		Delete(&models.GenericAttributeModel{}).Error
}

// AddToRole adds a customer to a role
func (r *GormCustomerRepository) AddToRole(ctx context.Context, customerID, roleID uuid.UUID) error {
	mapping := models.CustomerRoleMappingModel{
		CustomerID: customerID,
		RoleID:     roleID,
		CreatedAt:  time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&mapping).Error
}

// PurgeGuests hard-deletes guest customers inactive since the cutoff.
// Registered and system accounts are never purged.
func (r *GormCustomerRepository) PurgeGuests(ctx context.Context, inactiveSince time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.CustomerModel{}).
			Where("is_system_account = ? AND email = ? AND last_activity_at < ?", false, "", inactiveSince).
			Where("id NOT IN (?)", tx.Model(&models.CustomerRoleMappingModel{}).
				Select("customer_id").
				Joins("JOIN customer_roles ON customer_roles.id = customer_role_mappings.role_id").
				Where("customer_roles.system_name = ?", customer.RoleRegistered)).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("customer_id IN ?", ids).
			Delete(&models.GenericAttributeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id IN ?", ids).
			Delete(&models.CustomerRoleMappingModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", ids).Delete(&models.CustomerModel{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}

// hydrate attaches roles and attributes to the customer
func (r *GormCustomerRepository) hydrate(ctx context.Context, model *models.CustomerModel) (*customer.Customer, error) {
	c := model.ToDomain()

	var roleModels []models.RoleModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_role_mappings ON customer_role_mappings.role_id = customer_roles.id").
		Where("customer_role_mappings.customer_id = ?", model.ID).
		Find(&roleModels).Error; err != nil {
		return nil, err
	}
	for i := range roleModels {
		role := roleModels[i].ToDomain()
		c.Roles = append(c.Roles, role)
		c.RoleIDs = append(c.RoleIDs, role.ID)
	}

	var attrModels []models.GenericAttributeModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", model.ID).
		Find(&attrModels).Error; err != nil {
		return nil, err
	}
	for i := range attrModels {
		c.Attributes = append(c.Attributes, attrModels[i].ToDomain())
	}

	return c, nil
}

var _ customer.Repository = (*GormCustomerRepository)(nil)
