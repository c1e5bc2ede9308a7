package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
)

// OrderRepository defines the persistence surface for orders.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, record *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByCheckoutSessionID(ctx context.Context, checkoutSessionID uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from *enums.OrderStatus, to enums.OrderStatus, note string) error
}
