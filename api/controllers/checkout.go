package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/middleware"
	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/api/validators"
	"github.com/casspea/casspea-backend/internal/checkout"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type createCheckoutRequest struct {
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

type setShippingOptionRequest struct {
	ShippingOptionID uuid.UUID `json:"shipping_option_id" validate:"required"`
}

type setAddressesRequest struct {
	ShippingAddressID *uuid.UUID `json:"shipping_address_id"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id"`
}

type checkoutSessionView struct {
	ID            uuid.UUID `json:"id"`
	CartID        uuid.UUID `json:"cart_id"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`

	ShippingAddressID *uuid.UUID `json:"shipping_address_id,omitempty"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id,omitempty"`
	ShippingOptionID  *uuid.UUID `json:"shipping_option_id,omitempty"`

	Cart cartView `json:"cart"`

	Subtotal     string `json:"subtotal"`
	Discount     string `json:"discount"`
	ShippingCost string `json:"shipping_cost"`
	FreeShipping bool   `json:"free_shipping"`
	Total        string `json:"total"`
}

type paymentSessionView struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func newCheckoutSessionView(record *models.CheckoutSession, quote checkout.Quote) checkoutSessionView {
	return checkoutSessionView{
		ID:                record.ID,
		CartID:            record.CartID,
		Email:             record.Email,
		Phone:             record.Phone,
		PaymentStatus:     record.PaymentStatus.String(),
		CreatedAt:         record.CreatedAt,
		ShippingAddressID: record.ShippingAddressID,
		BillingAddressID:  record.BillingAddressID,
		ShippingOptionID:  record.ShippingOptionID,
		Cart:              newCartView(&record.Cart, time.Now()),
		Subtotal:          centsToMajor(quote.SubtotalCents),
		Discount:          centsToMajor(quote.DiscountCents),
		ShippingCost:      centsToMajor(quote.ShippingCents),
		FreeShipping:      quote.Shipping.Free,
		Total:             centsToMajor(quote.TotalCents),
	}
}

// CreateCheckoutSession returns the pending session for the caller's active
// cart, creating one when none exists.
func CreateCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		var body createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.CreateInput{Email: body.Email, Phone: body.Phone}
		if resolved, ok := middleware.IdentityFromContext(r.Context()); ok && resolved.Claims != nil {
			input.UserEmail = resolved.Claims.Email
		}

		record, err := svc.GetOrCreate(r.Context(), owner, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), record)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutSessionView(record, quote))
	}
}

// GetCheckoutSession returns one session with its live quote.
func GetCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.FindOwned(r.Context(), owner, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), record)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionView(record, quote))
	}
}

// SetCheckoutShippingOption attaches a shipping option to the session.
func SetCheckoutShippingOption(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setShippingOptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.SetShippingOption(r.Context(), owner, sessionID, body.ShippingOptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), record)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionView(record, quote))
	}
}

// SetCheckoutAddresses attaches shipping/billing addresses to the session.
func SetCheckoutAddresses(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setAddressesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.SetAddresses(r.Context(), owner, sessionID, body.ShippingAddressID, body.BillingAddressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), record)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutSessionView(record, quote))
	}
}

// CreatePaymentSession creates the Stripe-hosted payment page for a session.
func CreatePaymentSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		sessionID, err := validators.ParseUUIDParam(r, "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePaymentSession(r.Context(), owner, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, paymentSessionView{ID: result.ID, URL: result.URL})
	}
}
