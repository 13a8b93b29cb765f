package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCurrencyRepository implements directory.CurrencyRepository using GORM
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// Create creates a new currency with its store mappings
func (r *GormCurrencyRepository) Create(ctx context.Context, c *directory.Currency) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CurrencyModelFromDomain(c)
		if err := tx.Create(model).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return r.replaceStoreMappings(tx, c)
	})
}

// Update updates an existing currency and its store mappings
func (r *GormCurrencyRepository) Update(ctx context.Context, c *directory.Currency) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.CurrencyModelFromDomain(c)
		result := tx.Model(&models.CurrencyModel{}).
			Where("id = ? AND version = ?", c.ID, c.Version-1).
			Select("name", "currency_code", "rate", "display_locale", "published",
				"display_order", "domain_endings", "limited_to_stores", "version", "updated_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.replaceStoreMappings(tx, c)
	})
}

// FindByID finds a currency by ID
func (r *GormCurrencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Currency, error) {
	var model models.CurrencyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindAll returns all currencies ordered by display order, regardless of
// published state
func (r *GormCurrencyRepository) FindAll(ctx context.Context) ([]*directory.Currency, error) {
	var currencyModels []models.CurrencyModel
	if err := r.db.WithContext(ctx).
		Order("display_order ASC, name ASC").
		Find(&currencyModels).Error; err != nil {
		return nil, err
	}

	currencies := make([]*directory.Currency, 0, len(currencyModels))
	for i := range currencyModels {
		c, err := r.hydrate(ctx, &currencyModels[i])
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, c)
	}
	return currencies, nil
}

func (r *GormCurrencyRepository) hydrate(ctx context.Context, model *models.CurrencyModel) (*directory.Currency, error) {
	c := model.ToDomain()
	if !c.LimitedToStores {
		return c, nil
	}

	var mappings []models.CurrencyStoreMappingModel
	if err := r.db.WithContext(ctx).
		Where("currency_id = ?", model.ID).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	for _, m := range mappings {
		c.StoreIDs = append(c.StoreIDs, m.StoreID)
	}
	return c, nil
}

func (r *GormCurrencyRepository) replaceStoreMappings(tx *gorm.DB, c *directory.Currency) error {
	if err := tx.Where("currency_id = ?", c.ID).
		Delete(&models.CurrencyStoreMappingModel{}).Error; err != nil {
		return err
	}
	if !c.LimitedToStores || len(c.StoreIDs) == 0 {
		return nil
	}

	mappings := make([]models.CurrencyStoreMappingModel, len(c.StoreIDs))
	now := time.Now()
	for i, storeID := range c.StoreIDs {
		mappings[i] = models.CurrencyStoreMappingModel{
			CurrencyID: c.ID,
			StoreID:    storeID,
			CreatedAt:  now,
		}
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mappings).Error
}

var _ directory.CurrencyRepository = (*GormCurrencyRepository)(nil)
