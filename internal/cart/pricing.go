package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// PricedItem is a cart line with its derived prices. Never persisted.
type PricedItem struct {
	Item            *models.CartItem
	BasePrice       decimal.Decimal
	DiscountedPrice decimal.Decimal
	Savings         decimal.Decimal
	Excluded        bool
}

// Totals is the cart's derived price summary, recomputed on every read.
type Totals struct {
	Items           []PricedItem
	BaseTotal       decimal.Decimal
	DiscountedTotal decimal.Decimal
	TotalSavings    decimal.Decimal
	DiscountValid   bool
}

// Price recomputes all derived amounts for the cart at the given instant.
//
// Percentage discounts reduce only non-excluded lines. Fixed-amount discounts
// come off the whole base total and ignore the exclusion set; the asymmetry
// matches the storefront's historical behavior and is pinned by tests.
func Price(record *models.Cart, now time.Time) Totals {
	totals := Totals{
		BaseTotal:       decimal.Zero,
		DiscountedTotal: decimal.Zero,
		TotalSavings:    decimal.Zero,
	}
	if record == nil {
		return totals
	}

	discount := record.Discount
	discountActive := discount != nil && discount.StatusAt(now) == enums.DiscountStatusActive

	nonExcludedSubtotal := decimal.Zero
	totals.Items = make([]PricedItem, 0, len(record.Items))
	for i := range record.Items {
		item := &record.Items[i]
		base := item.Product.BasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		priced := PricedItem{
			Item:            item,
			BasePrice:       base,
			DiscountedPrice: base,
			Savings:         decimal.Zero,
		}
		if discountActive {
			priced.Excluded = discount.ExcludesProduct(item.ProductID)
			if !priced.Excluded {
				nonExcludedSubtotal = nonExcludedSubtotal.Add(base)
				if discount.DiscountType == enums.DiscountTypePercentage {
					reduction := base.Mul(discount.Amount).Div(oneHundred)
					priced.DiscountedPrice = base.Sub(reduction)
					priced.Savings = reduction
				}
			}
		}
		totals.BaseTotal = totals.BaseTotal.Add(base)
		totals.Items = append(totals.Items, priced)
	}

	totals.DiscountedTotal = totals.BaseTotal
	if discountActive {
		switch discount.DiscountType {
		case enums.DiscountTypePercentage:
			discountAmount := nonExcludedSubtotal.Mul(discount.Amount).Div(oneHundred)
			totals.DiscountedTotal = decimal.Max(totals.BaseTotal.Sub(discountAmount), decimal.Zero)
		case enums.DiscountTypeFixedAmount:
			totals.DiscountedTotal = decimal.Max(totals.BaseTotal.Sub(discount.Amount), decimal.Zero)
		}
	}

	totals.TotalSavings = decimal.Max(totals.BaseTotal.Sub(totals.DiscountedTotal), decimal.Zero)
	if discount != nil {
		totals.DiscountValid = totals.BaseTotal.GreaterThanOrEqual(discount.MinOrderValue)
	}
	return totals
}
