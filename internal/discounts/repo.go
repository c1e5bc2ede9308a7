package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

// DiscountRepository defines the persistence surface required by the evaluator.
type DiscountRepository interface {
	WithTx(tx *gorm.DB) DiscountRepository
	FindByCode(ctx context.Context, code string) (*models.Discount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
}

// Repository exposes persistence operations for discounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a discount repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) DiscountRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByCode loads a discount by case-insensitive code match, exclusions included.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Preload("Exclusions").
		Where("LOWER(code) = LOWER(?)", code).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// FindByID loads a discount with its exclusions.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Preload("Exclusions").
		Where("id = ?", id).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}
