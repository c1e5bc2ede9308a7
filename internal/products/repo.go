package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

// Repository exposes catalogue reads for products and flavours.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a product regardless of availability.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns purchasable products ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListFlavoursByIDs loads flavours with their allergens for box validation.
func (r *Repository) ListFlavoursByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Flavour, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Flavour
	if err := r.db.WithContext(ctx).
		Preload("Allergens").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListActiveFlavours returns flavours available on the pick-and-mix screen.
func (r *Repository) ListActiveFlavours(ctx context.Context) ([]models.Flavour, error) {
	var rows []models.Flavour
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Allergens").
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAllergensByIDs loads allergen rows for box exclusions.
func (r *Repository) ListAllergensByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Allergen, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Allergen
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
