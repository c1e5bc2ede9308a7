package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/db/models"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the derived shipping charge for a checkout.
type Quote struct {
	Cost          decimal.Decimal
	CostCents     int64
	Free          bool
	ThresholdMet  bool
	DeliverySpeed string
}

// Cost derives the shipping charge for the chosen option. A nil option costs
// nothing. Standard and regular speeds are free once the discounted cart
// subtotal reaches the configured threshold; faster speeds always charge the
// option's fixed price.
func Cost(option *models.ShippingOption, discountedSubtotal, freeThreshold decimal.Decimal) Quote {
	if option == nil {
		return Quote{Cost: decimal.Zero, Free: true}
	}

	thresholdMet := freeThreshold.IsPositive() && discountedSubtotal.GreaterThanOrEqual(freeThreshold)
	if option.DeliverySpeed.QualifiesForFreeShipping() && thresholdMet {
		return Quote{
			Cost:          decimal.Zero,
			Free:          true,
			ThresholdMet:  true,
			DeliverySpeed: option.DeliverySpeed.String(),
		}
	}

	cost := option.Price
	return Quote{
		Cost:          cost,
		CostCents:     MajorToCents(cost),
		ThresholdMet:  thresholdMet,
		DeliverySpeed: option.DeliverySpeed.String(),
	}
}

// MajorToCents converts a major-unit amount to cents, rounding half up.
func MajorToCents(amount decimal.Decimal) int64 {
	return amount.Mul(oneHundred).Round(0).IntPart()
}

// TotalWithShippingCents returns the grand total in cents. The cart total plus
// shipping cost is rounded UP to the smallest currency unit, which differs from
// the half-up rounding used for the per-amount conversions. Both behaviors are
// pinned by monetary tests and must not be unified.
func TotalWithShippingCents(cartTotal, shippingCost decimal.Decimal) int64 {
	return cartTotal.Add(shippingCost).Mul(oneHundred).Ceil().IntPart()
}
