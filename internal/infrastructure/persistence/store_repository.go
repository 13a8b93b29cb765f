package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/store"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStoreRepository implements store.Repository using GORM
type GormStoreRepository struct {
	db *gorm.DB
}

// NewGormStoreRepository creates a new GormStoreRepository
func NewGormStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// Create creates a new store
func (r *GormStoreRepository) Create(ctx context.Context, s *store.Store) error {
	model := &models.StoreModel{}
	model.FromDomain(s)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update updates an existing store
func (r *GormStoreRepository) Update(ctx context.Context, s *store.Store) error {
	model := &models.StoreModel{}
	model.FromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&models.StoreModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Select("name", "host_name", "default_currency_id", "default_language_id",
			"display_order", "version", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindByID finds a store by ID
func (r *GormStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByHost finds the store answering on the given host name
func (r *GormStoreRepository) FindByHost(ctx context.Context, host string) (*store.Store, error) {
	var model models.StoreModel
	if err := r.db.WithContext(ctx).
		Where("host_name = ?", strings.ToLower(host)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all stores ordered by display order
func (r *GormStoreRepository) FindAll(ctx context.Context) ([]*store.Store, error) {
	var storeModels []models.StoreModel
	if err := r.db.WithContext(ctx).
		Order("display_order ASC, name ASC").
		Find(&storeModels).Error; err != nil {
		return nil, err
	}

	stores := make([]*store.Store, len(storeModels))
	for i := range storeModels {
		stores[i] = storeModels[i].ToDomain()
	}
	return stores, nil
}

var _ store.Repository = (*GormStoreRepository)(nil)
