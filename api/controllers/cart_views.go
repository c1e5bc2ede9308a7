package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/internal/cart"
	"github.com/casspea/casspea-backend/pkg/db/models"
)

// centsToMajor formats a minor-unit amount as a fixed two decimal string.
func centsToMajor(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

type cartDiscountView struct {
	Code    string  `json:"code"`
	Type    string  `json:"type"`
	Amount  string  `json:"amount"`
	Valid   bool    `json:"valid"`
	Message *string `json:"message,omitempty"`
}

type boxFlavorView struct {
	FlavorID uuid.UUID `json:"flavor_id"`
	Name     string    `json:"name,omitempty"`
	Quantity int       `json:"quantity"`
}

type boxView struct {
	SelectionType    string          `json:"selection_type"`
	FlavorSelections []boxFlavorView `json:"flavor_selections,omitempty"`
	AllergenIDs      []uuid.UUID     `json:"allergen_ids,omitempty"`
}

type cartItemView struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	BasePrice       string    `json:"base_price"`
	DiscountedPrice string    `json:"discounted_price"`
	Savings         string    `json:"savings"`
	Excluded        bool      `json:"excluded_from_discount"`
	Box             *boxView  `json:"box_customization,omitempty"`
}

type cartView struct {
	ID           uuid.UUID         `json:"id"`
	Active       bool              `json:"active"`
	GiftMessage  *string           `json:"gift_message,omitempty"`
	ShippingDate *time.Time        `json:"shipping_date,omitempty"`
	Discount     *cartDiscountView `json:"discount,omitempty"`
	Items        []cartItemView    `json:"items"`

	BaseTotal       string `json:"base_total"`
	DiscountedTotal string `json:"discounted_total"`
	TotalSavings    string `json:"total_savings"`
}

// newCartView prices the cart at the current instant and flattens it for the
// wire. Amounts are fixed-point strings, never floats.
func newCartView(record *models.Cart, now time.Time) cartView {
	totals := cart.Price(record, now)

	items := make([]cartItemView, 0, len(totals.Items))
	for _, priced := range totals.Items {
		view := cartItemView{
			ID:              priced.Item.ID,
			ProductID:       priced.Item.ProductID,
			ProductName:     priced.Item.Product.Name,
			Quantity:        priced.Item.Quantity,
			BasePrice:       priced.BasePrice.StringFixed(2),
			DiscountedPrice: priced.DiscountedPrice.StringFixed(2),
			Savings:         priced.Savings.StringFixed(2),
			Excluded:        priced.Excluded,
		}
		if box := priced.Item.BoxCustomization; box != nil {
			view.Box = newBoxView(box)
		}
		items = append(items, view)
	}

	view := cartView{
		ID:              record.ID,
		Active:          record.Active,
		GiftMessage:     record.GiftMessage,
		ShippingDate:    record.ShippingDate,
		Items:           items,
		BaseTotal:       totals.BaseTotal.StringFixed(2),
		DiscountedTotal: totals.DiscountedTotal.StringFixed(2),
		TotalSavings:    totals.TotalSavings.StringFixed(2),
	}

	if discount := record.Discount; discount != nil {
		view.Discount = &cartDiscountView{
			Code:   discount.Code,
			Type:   discount.DiscountType.String(),
			Amount: discount.Amount.StringFixed(2),
			Valid:  totals.DiscountValid,
		}
	}
	return view
}

func newBoxView(box *models.CartItemBoxCustomization) *boxView {
	view := &boxView{SelectionType: box.SelectionType.String()}
	for _, selection := range box.FlavorSelections {
		view.FlavorSelections = append(view.FlavorSelections, boxFlavorView{
			FlavorID: selection.FlavorID,
			Name:     selection.Flavor.Name,
			Quantity: selection.Quantity,
		})
	}
	for _, allergen := range box.Allergens {
		view.AllergenIDs = append(view.AllergenIDs, allergen.ID)
	}
	return view
}
