package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// CheckoutSession captures everything needed to take payment for a cart.
// A cart accumulates sessions over time as payments fail or expire; only
// the most recent PENDING one is current. Payment status moves from
// PENDING to a single terminal state and never back.
type CheckoutSession struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	Cart   Cart      `gorm:"foreignKey:CartID"`

	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	SessionID *string    `gorm:"column:session_id;index"`

	// Guest contact details. Email is required before a payment session
	// can be created for a guest checkout.
	Email *string `gorm:"column:email"`
	Phone *string `gorm:"column:phone"`

	ShippingAddressID *uuid.UUID `gorm:"column:shipping_address_id;type:uuid"`
	ShippingAddress   *Address   `gorm:"foreignKey:ShippingAddressID"`
	BillingAddressID  *uuid.UUID `gorm:"column:billing_address_id;type:uuid"`
	BillingAddress    *Address   `gorm:"foreignKey:BillingAddressID"`

	ShippingOptionID *uuid.UUID      `gorm:"column:shipping_option_id;type:uuid"`
	ShippingOption   *ShippingOption `gorm:"foreignKey:ShippingOptionID"`

	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'PENDING'"`

	StripeSessionID       *string `gorm:"column:stripe_session_id;index"`
	StripePaymentIntentID *string `gorm:"column:stripe_payment_intent_id"`

	// Amounts captured at payment-session creation time, in pence.
	SubtotalCents int64 `gorm:"column:subtotal_cents;not null;default:0"`
	DiscountCents int64 `gorm:"column:discount_cents;not null;default:0"`
	ShippingCents int64 `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents    int64 `gorm:"column:total_cents;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CheckoutSession) TableName() string { return "checkout_sessions" }

// Total returns the captured grand total in pounds.
func (cs *CheckoutSession) Total() decimal.Decimal {
	return decimal.New(cs.TotalCents, -2)
}
