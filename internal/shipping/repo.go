package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

// ShippingRepository defines the read surface for shipping rates.
type ShippingRepository interface {
	WithTx(tx *gorm.DB) ShippingRepository
	FindOptionByID(ctx context.Context, id uuid.UUID) (*models.ShippingOption, error)
	ListActiveOptions(ctx context.Context) ([]models.ShippingOption, error)
}

// Repository exposes persistence operations for shipping rates.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a shipping repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) ShippingRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindOptionByID loads a shipping option with its carrier.
func (r *Repository) FindOptionByID(ctx context.Context, id uuid.UUID) (*models.ShippingOption, error) {
	var option models.ShippingOption
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("id = ?", id).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// ListActiveOptions returns selectable options for active carriers, cheapest first.
func (r *Repository) ListActiveOptions(ctx context.Context) ([]models.ShippingOption, error) {
	var rows []models.ShippingOption
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Joins("JOIN shipping_companies ON shipping_companies.id = shipping_options.company_id").
		Where("shipping_options.active = ? AND shipping_companies.active = ?", true, true).
		Order("shipping_options.price ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
