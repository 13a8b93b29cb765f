package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLanguageRepository implements directory.LanguageRepository using GORM
type GormLanguageRepository struct {
	db *gorm.DB
}

// NewGormLanguageRepository creates a new GormLanguageRepository
func NewGormLanguageRepository(db *gorm.DB) *GormLanguageRepository {
	return &GormLanguageRepository{db: db}
}

// Create creates a new language
func (r *GormLanguageRepository) Create(ctx context.Context, l *directory.Language) error {
	model := &models.LanguageModel{}
	model.FromDomain(l)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a language by ID
func (r *GormLanguageRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Language, error) {
	var model models.LanguageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.hydrate(ctx, &model)
}

// FindAllPublished returns all published languages ordered by display order
func (r *GormLanguageRepository) FindAllPublished(ctx context.Context) ([]*directory.Language, error) {
	var languageModels []models.LanguageModel
	if err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("display_order ASC, name ASC").
		Find(&languageModels).Error; err != nil {
		return nil, err
	}

	languages := make([]*directory.Language, 0, len(languageModels))
	for i := range languageModels {
		l, err := r.hydrate(ctx, &languageModels[i])
		if err != nil {
			return nil, err
		}
		languages = append(languages, l)
	}
	return languages, nil
}

func (r *GormLanguageRepository) hydrate(ctx context.Context, model *models.LanguageModel) (*directory.Language, error) {
	l := model.ToDomain()
	if !l.LimitedToStores {
		return l, nil
	}

	var mappings []models.LanguageStoreMappingModel
	if err := r.db.WithContext(ctx).
		Where("language_id = ?", model.ID).
		Find(&mappings).Error; err != nil {
		return nil, err
	}
	for _, m := range mappings {
		l.StoreIDs = append(l.StoreIDs, m.StoreID)
	}
	return l, nil
}

var _ directory.LanguageRepository = (*GormLanguageRepository)(nil)
