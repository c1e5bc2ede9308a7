package discounts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
)

func cartItem(productID uuid.UUID, price string, qty int) models.CartItem {
	return models.CartItem{
		ProductID: productID,
		Product: models.Product{
			ID:        productID,
			BasePrice: decimal.RequireFromString(price),
		},
		Quantity: qty,
	}
}

func activeDiscount() *models.Discount {
	return &models.Discount{
		ID:           uuid.New(),
		Code:         "SAVE10",
		DiscountType: enums.DiscountTypePercentage,
		Amount:       decimal.RequireFromString("10"),
		Active:       true,
	}
}

func TestEvaluateActiveDiscount(t *testing.T) {
	now := time.Now()
	productA := uuid.New()
	productB := uuid.New()
	items := []models.CartItem{
		cartItem(productA, "20.00", 1),
		cartItem(productB, "15.00", 2),
	}

	eval, err := Evaluate(activeDiscount(), items, now)
	require.NoError(t, err)
	assert.Equal(t, "50.00", eval.EligibleTotal.StringFixed(2))
	assert.Equal(t, 2, eval.EligibleItems)
	assert.Empty(t, eval.Message)
}

func TestEvaluateExclusionsReduceEligibleTotal(t *testing.T) {
	now := time.Now()
	excluded := uuid.New()
	included := uuid.New()

	discount := activeDiscount()
	discount.Exclusions = []models.Product{{ID: excluded}}

	items := []models.CartItem{
		cartItem(excluded, "30.00", 1),
		cartItem(included, "20.00", 1),
	}

	eval, err := Evaluate(discount, items, now)
	require.NoError(t, err)
	assert.Equal(t, "20.00", eval.EligibleTotal.StringFixed(2))
	assert.Equal(t, 1, eval.EligibleItems)
	assert.Equal(t, "discount applies to 1 of 2 items", eval.Message)
}

func TestEvaluateBelowMinimum(t *testing.T) {
	now := time.Now()
	discount := activeDiscount()
	discount.MinOrderValue = decimal.RequireFromString("50")

	items := []models.CartItem{cartItem(uuid.New(), "40.00", 1)}

	_, err := Evaluate(discount, items, now)
	require.Error(t, err)

	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())

	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "below_minimum", details["reason"])
	assert.Equal(t, "50.00", details["min_order_value"])
}

func TestEvaluateLifecycleStates(t *testing.T) {
	now := time.Now()
	items := []models.CartItem{cartItem(uuid.New(), "40.00", 1)}

	inactive := activeDiscount()
	inactive.Active = false
	_, err := Evaluate(inactive, items, now)
	assert.Error(t, err)

	future := now.Add(24 * time.Hour)
	scheduled := activeDiscount()
	scheduled.StartDate = &future
	_, err = Evaluate(scheduled, items, now)
	assert.Error(t, err)

	past := now.Add(-24 * time.Hour)
	expired := activeDiscount()
	expired.EndDate = &past
	_, err = Evaluate(expired, items, now)
	assert.Error(t, err)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "save10", NormalizeCode("  SAVE10 "))
}
