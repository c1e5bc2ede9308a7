package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgstripe "github.com/casspea/casspea-backend/pkg/stripe"
)

// PaymentSessionClient exposes the subset of Stripe operations required by the
// checkout service.
type PaymentSessionClient interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeClientWrapper struct{}

// NewPaymentSessionClient wraps the configured Stripe client so the checkout
// service can be tested without the network.
func NewPaymentSessionClient(api *pkgstripe.Client) PaymentSessionClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return session.New(params)
}
