package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// Discount is a promo code shoppers can apply to a cart.
type Discount struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string             `gorm:"column:title;not null"`
	Code         string             `gorm:"column:code;not null;uniqueIndex"`
	StripeID     string             `gorm:"column:stripe_id"`
	DiscountType enums.DiscountType `gorm:"column:discount_type;not null;default:'PERCENTAGE'"`
	Amount       decimal.Decimal    `gorm:"column:amount;type:numeric(10,2);not null"`

	MinOrderValue decimal.Decimal `gorm:"column:min_order_value;type:numeric(10,2);not null;default:0"`

	Exclusions []Product `gorm:"many2many:discount_exclusions"`

	Active    bool       `gorm:"column:active;not null;default:true"`
	StartDate *time.Time `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// StatusAt derives the discount's lifecycle status at the given instant.
func (d *Discount) StatusAt(now time.Time) enums.DiscountStatus {
	if d == nil || !d.Active {
		return enums.DiscountStatusInactive
	}
	if d.StartDate != nil && d.StartDate.After(now) {
		return enums.DiscountStatusScheduled
	}
	if d.EndDate != nil && d.EndDate.Before(now) {
		return enums.DiscountStatusExpired
	}
	return enums.DiscountStatusActive
}

// IsValidAt reports whether the discount may be applied at the given instant.
func (d *Discount) IsValidAt(now time.Time) bool {
	return d.StatusAt(now) == enums.DiscountStatusActive
}

// ExcludesProduct reports whether the product sits in the exclusion set.
func (d *Discount) ExcludesProduct(productID uuid.UUID) bool {
	if d == nil {
		return false
	}
	for _, p := range d.Exclusions {
		if p.ID == productID {
			return true
		}
	}
	return false
}
