package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

// CheckoutRepository defines the persistence surface for checkout sessions.
type CheckoutRepository interface {
	WithTx(tx *gorm.DB) CheckoutRepository
	Create(ctx context.Context, record *models.CheckoutSession) (*models.CheckoutSession, error)
	Update(ctx context.Context, record *models.CheckoutSession) (*models.CheckoutSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error)
	FindPendingByCartID(ctx context.Context, cartID uuid.UUID) (*models.CheckoutSession, error)
	FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error)
}
