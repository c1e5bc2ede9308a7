package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/casspea/casspea-backend/pkg/db/models"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/metrics"
)

type checkoutService interface {
	FindByID(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error)
	MarkPaid(ctx context.Context, sessionID uuid.UUID, paymentRef string) (*models.CheckoutSession, bool, error)
	MarkFailed(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error)
	MarkCancelled(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error)
}

type orderCreator interface {
	CreateFromCheckoutSession(ctx context.Context, session *models.CheckoutSession) (*models.Order, bool, error)
}

type cartDeactivator interface {
	Deactivate(ctx context.Context, cartID uuid.UUID) error
}

type confirmationSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) (bool, error)
}

type ServiceParams struct {
	Checkout checkoutService
	Orders   orderCreator
	Carts    cartDeactivator
	Mailer   confirmationSender
	Logger   *logger.Logger
	Metrics  *metrics.WebhookMetrics
}

// Service applies Stripe checkout events to the session state machine.
// Payment state and order creation must succeed for the event to be acked;
// cart deactivation and the confirmation email are best-effort and never
// roll back a recorded payment.
type Service struct {
	checkout checkoutService
	orders   orderCreator
	carts    cartDeactivator
	mailer   confirmationSender
	logg     *logger.Logger
	met      *metrics.WebhookMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repo required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		checkout: params.Checkout,
		orders:   params.Orders,
		carts:    params.Carts,
		mailer:   params.Mailer,
		logg:     params.Logger,
		met:      params.Metrics,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	start := time.Now()
	err := s.dispatch(ctx, event)
	if s.met != nil {
		s.met.ObserveDuration(string(event.Type), time.Since(start))
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.met.IncEvent(string(event.Type), outcome)
	}
	return err
}

func (s *Service) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCompleted(ctx, event)
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		return s.handleFailed(ctx, event)
	case stripe.EventTypeCheckoutSessionExpired:
		return s.handleExpired(ctx, event)
	default:
		return nil
	}
}

// sessionIDFromEvent resolves the internal session from the event's
// checkout_session_id metadata. A missing or malformed id is a hard error;
// these events always originate from payment sessions this service created.
func sessionIDFromEvent(event *stripe.Event) (uuid.UUID, *stripe.CheckoutSession, error) {
	var stripeSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &stripeSession); err != nil {
		return uuid.Nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
	}

	raw := stripeSession.Metadata["checkout_session_id"]
	if raw == "" {
		return uuid.Nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "event carries no checkout session reference").
			WithDetails(map[string]any{"stripe_session_id": stripeSession.ID})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "malformed checkout session reference")
	}
	return id, &stripeSession, nil
}

func (s *Service) handleCompleted(ctx context.Context, event *stripe.Event) error {
	sessionID, stripeSession, err := sessionIDFromEvent(event)
	if err != nil {
		return err
	}
	ctx = s.logg.WithCheckoutSessionID(ctx, sessionID.String())

	paymentRef := ""
	if stripeSession.PaymentIntent != nil {
		paymentRef = stripeSession.PaymentIntent.ID
	}

	session, changed, err := s.checkout.MarkPaid(ctx, sessionID, paymentRef)
	if err != nil {
		return err
	}
	if !changed {
		s.logg.Info(ctx, "checkout session already paid, redelivery ignored")
	}

	order, created, err := s.orders.CreateFromCheckoutSession(ctx, session)
	if err != nil {
		return err
	}
	if created {
		if s.met != nil {
			s.met.IncOrderCreated()
		}
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(ctx, "order created from paid checkout session")
	}

	var sideEffects error
	if err := s.carts.Deactivate(ctx, session.CartID); err != nil {
		sideEffects = multierr.Append(sideEffects, err)
	}
	if _, err := s.mailer.SendOrderConfirmation(ctx, order); err != nil {
		sideEffects = multierr.Append(sideEffects, err)
	}
	if sideEffects != nil {
		s.logg.Error(ctx, "webhook side effects incomplete", sideEffects)
	}
	return nil
}

func (s *Service) handleFailed(ctx context.Context, event *stripe.Event) error {
	sessionID, _, err := sessionIDFromEvent(event)
	if err != nil {
		return err
	}
	ctx = s.logg.WithCheckoutSessionID(ctx, sessionID.String())

	_, changed, err := s.checkout.MarkFailed(ctx, sessionID)
	if err != nil {
		return err
	}
	if !changed {
		s.logg.Info(ctx, "checkout session already terminal, failure event ignored")
	}
	return nil
}

func (s *Service) handleExpired(ctx context.Context, event *stripe.Event) error {
	sessionID, _, err := sessionIDFromEvent(event)
	if err != nil {
		return err
	}
	ctx = s.logg.WithCheckoutSessionID(ctx, sessionID.String())

	_, changed, err := s.checkout.MarkCancelled(ctx, sessionID)
	if err != nil {
		return err
	}
	if !changed {
		s.logg.Info(ctx, "checkout session already terminal, expiry event ignored")
	}
	return nil
}
