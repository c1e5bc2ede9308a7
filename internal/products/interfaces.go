package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

// ProductRepository defines the catalogue surface required by callers.
type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	ListFlavoursByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Flavour, error)
	ListActiveFlavours(ctx context.Context) ([]models.Flavour, error)
	ListAllergensByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Allergen, error)
}
