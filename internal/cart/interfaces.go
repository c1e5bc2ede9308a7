package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/types"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveForOwner(ctx context.Context, owner types.OwnerKey, lock bool) (*models.Cart, error)
	FindByIDForOwner(ctx context.Context, id uuid.UUID, owner types.OwnerKey) (*models.Cart, error)
	Create(ctx context.Context, record *models.Cart) (*models.Cart, error)
	Update(ctx context.Context, record *models.Cart) (*models.Cart, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Deactivate(ctx context.Context, cartID uuid.UUID) error
}
