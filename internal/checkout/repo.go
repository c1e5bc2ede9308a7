package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
)

// Repository exposes persistence operations for checkout sessions.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a checkout repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CheckoutRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) preloaded(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Cart").
		Preload("Cart.Items").
		Preload("Cart.Items.Product").
		Preload("Cart.Items.BoxCustomization").
		Preload("Cart.Discount").
		Preload("Cart.Discount.Exclusions").
		Preload("ShippingAddress").
		Preload("BillingAddress").
		Preload("ShippingOption").
		Preload("ShippingOption.Company")
}

// Create inserts a new checkout session.
func (r *Repository) Create(ctx context.Context, record *models.CheckoutSession) (*models.CheckoutSession, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.PaymentStatus == "" {
		record.PaymentStatus = enums.PaymentStatusPending
	}
	if err := r.db.WithContext(ctx).Omit("Cart", "ShippingAddress", "BillingAddress", "ShippingOption").Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update saves the provided checkout session.
func (r *Repository) Update(ctx context.Context, record *models.CheckoutSession) (*models.CheckoutSession, error) {
	if err := r.db.WithContext(ctx).Omit("Cart", "ShippingAddress", "BillingAddress", "ShippingOption").Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByID loads a checkout session with its cart and shipping graph.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error) {
	var record models.CheckoutSession
	err := r.preloaded(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindPendingByCartID returns the most recent pending session for a cart.
func (r *Repository) FindPendingByCartID(ctx context.Context, cartID uuid.UUID) (*models.CheckoutSession, error) {
	var record models.CheckoutSession
	err := r.preloaded(r.db.WithContext(ctx)).
		Where("cart_id = ? AND payment_status = ?", cartID, enums.PaymentStatusPending).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByStripeSessionID resolves a session from the processor's identifier.
func (r *Repository) FindByStripeSessionID(ctx context.Context, stripeSessionID string) (*models.CheckoutSession, error) {
	var record models.CheckoutSession
	err := r.preloaded(r.db.WithContext(ctx)).
		Where("stripe_session_id = ?", stripeSessionID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
