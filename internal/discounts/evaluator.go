package discounts

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
)

// Evaluation is the outcome of validating a discount against a cart.
type Evaluation struct {
	Discount      *models.Discount
	EligibleTotal decimal.Decimal
	EligibleItems int
	TotalItems    int
	Message       string
}

// Evaluate validates a discount against the cart's items at the given instant.
// The eligible total only counts items whose product is not excluded; excluded
// items stay in the cart but contribute nothing toward the minimum.
func Evaluate(discount *models.Discount, items []models.CartItem, now time.Time) (*Evaluation, error) {
	if discount == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	if discount.StatusAt(now) != enums.DiscountStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code is invalid or expired")
	}

	eligible := decimal.Zero
	eligibleItems := 0
	for _, item := range items {
		if discount.ExcludesProduct(item.ProductID) {
			continue
		}
		line := item.Product.BasePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		eligible = eligible.Add(line)
		eligibleItems++
	}

	if discount.MinOrderValue.IsPositive() && eligible.LessThan(discount.MinOrderValue) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order does not meet the discount minimum").
			WithDetails(map[string]any{
				"reason":          "below_minimum",
				"min_order_value": discount.MinOrderValue.StringFixed(2),
				"eligible_total":  eligible.StringFixed(2),
			})
	}

	eval := &Evaluation{
		Discount:      discount,
		EligibleTotal: eligible,
		EligibleItems: eligibleItems,
		TotalItems:    len(items),
	}
	if eligibleItems < len(items) {
		eval.Message = fmt.Sprintf("discount applies to %d of %d items", eligibleItems, len(items))
	}
	return eval, nil
}

// NormalizeCode trims and lowercases a discount code for matching.
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
