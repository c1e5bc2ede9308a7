package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/middleware"
	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/api/validators"
	"github.com/casspea/casspea-backend/internal/cart"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/types"
)

func ownerFromRequest(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (types.OwnerKey, bool) {
	resolved, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "caller identity missing"))
		return types.OwnerKey{}, false
	}
	return resolved.Owner, true
}

type updateCartRequest struct {
	GiftMessage    *string `json:"gift_message"`
	ShippingDate   *string `json:"shipping_date"`
	DiscountCode   *string `json:"discount_code"`
	RemoveDiscount bool    `json:"remove_discount"`
}

type addCartItemRequest struct {
	ProductID        uuid.UUID                `json:"product_id" validate:"required"`
	Quantity         int                      `json:"quantity" validate:"required,min=1"`
	SelectionType    *string                  `json:"selection_type"`
	FlavorSelections []flavorSelectionRequest `json:"flavor_selections" validate:"dive"`
	AllergenIDs      []uuid.UUID              `json:"allergen_ids"`
}

type flavorSelectionRequest struct {
	FlavorID uuid.UUID `json:"flavor_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type updateItemQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// GetCart returns the caller's active cart, creating one on first touch.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		record, _, err := svc.GetOrCreateActiveCart(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record, time.Now()))
	}
}

// UpdateCart applies a partial update: gift message, shipping date, discount.
func UpdateCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		var body updateCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cart.UpdateCartInput{
			GiftMessage:    body.GiftMessage,
			DiscountCode:   body.DiscountCode,
			RemoveDiscount: body.RemoveDiscount,
		}
		if body.ShippingDate != nil {
			parsed, err := time.Parse("2006-01-02", *body.ShippingDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shipping_date must be YYYY-MM-DD"))
				return
			}
			input.ShippingDate = &parsed
		}

		record, err := svc.UpdateCart(r.Context(), owner, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record, time.Now()))
	}
}

// AddCartItem appends a product line, with box customization when given.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		var body addCartItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := cart.AddItemInput{
			ProductID:   body.ProductID,
			Quantity:    body.Quantity,
			AllergenIDs: body.AllergenIDs,
		}
		if body.SelectionType != nil {
			selection, err := enums.ParseSelectionType(*body.SelectionType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid selection type"))
				return
			}
			input.SelectionType = &selection
		}
		for _, selection := range body.FlavorSelections {
			input.FlavorSelections = append(input.FlavorSelections, cart.FlavorSelectionInput{
				FlavorID: selection.FlavorID,
				Quantity: selection.Quantity,
			})
		}

		record, err := svc.AddItem(r.Context(), owner, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(record, time.Now()))
	}
}

// UpdateCartItem changes a line's quantity.
func UpdateCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateItemQuantity(r.Context(), owner, itemID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record, time.Now()))
	}
}

// RemoveCartItem deletes a line from the cart.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		itemID, err := validators.ParseUUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RemoveItem(r.Context(), owner, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record, time.Now()))
	}
}
