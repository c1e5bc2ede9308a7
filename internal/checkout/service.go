package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/internal/cart"
	"github.com/casspea/casspea-backend/internal/shipping"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/types"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the checkout session state machine.
type Service interface {
	GetOrCreate(ctx context.Context, owner types.OwnerKey, input CreateInput) (*models.CheckoutSession, error)
	SetShippingOption(ctx context.Context, owner types.OwnerKey, sessionID, optionID uuid.UUID) (*models.CheckoutSession, error)
	SetAddresses(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID, shippingAddressID, billingAddressID *uuid.UUID) (*models.CheckoutSession, error)
	Quote(ctx context.Context, record *models.CheckoutSession) (Quote, error)
	CreatePaymentSession(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*PaymentSessionResult, error)
	MarkPaid(ctx context.Context, sessionID uuid.UUID, paymentRef string) (*models.CheckoutSession, bool, error)
	MarkFailed(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error)
	MarkCancelled(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error)
	FindByID(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error)
	FindOwned(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*models.CheckoutSession, error)
}

type service struct {
	repo         CheckoutRepository
	cartRepo     cart.CartRepository
	shippingRepo shipping.ShippingRepository
	tx           txRunner
	payments     PaymentSessionClient
	shippingCfg  config.ShippingConfig
	stripeCfg    config.StripeConfig
	frontendCfg  config.FrontendConfig
	now          func() time.Time
}

// NewService builds a checkout service backed by the provided stack.
func NewService(
	repo CheckoutRepository,
	cartRepo cart.CartRepository,
	shippingRepo shipping.ShippingRepository,
	tx txRunner,
	payments PaymentSessionClient,
	shippingCfg config.ShippingConfig,
	stripeCfg config.StripeConfig,
	frontendCfg config.FrontendConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if shippingRepo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	return &service{
		repo:         repo,
		cartRepo:     cartRepo,
		shippingRepo: shippingRepo,
		tx:           tx,
		payments:     payments,
		shippingCfg:  shippingCfg,
		stripeCfg:    stripeCfg,
		frontendCfg:  frontendCfg,
		now:          time.Now,
	}, nil
}

// CreateInput carries the optional contact details for session creation.
// UserEmail is the authenticated user's address, resolved by the caller.
type CreateInput struct {
	Email     *string
	Phone     *string
	UserEmail string
}

// Quote is the derived money summary for a checkout session.
type Quote struct {
	Totals        cart.Totals
	Shipping      shipping.Quote
	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	TotalCents    int64
}

// PaymentSessionResult is the processor redirect handle.
type PaymentSessionResult struct {
	ID  string
	URL string
}

// GetOrCreate resolves the owner's active cart and returns its current
// pending session, creating one when none exists. Cart resolution and session
// creation share one transaction. Guest sessions must carry an email before
// they can be saved.
func (s *service) GetOrCreate(ctx context.Context, owner types.OwnerKey, input CreateInput) (*models.CheckoutSession, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}

	var sessionID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartTxRepo := s.cartRepo.WithTx(tx)
		cartRecord, err := cartTxRepo.FindActiveForOwner(ctx, owner, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cartRecord, err = cartTxRepo.Create(ctx, &models.Cart{
				UserID:    owner.UserID,
				SessionID: owner.SessionID,
			})
		}
		if err != nil {
			return err
		}

		txRepo := s.repo.WithTx(tx)
		existing, err := txRepo.FindPendingByCartID(ctx, cartRecord.ID)
		if err == nil {
			if !owner.IsUser() && input.Email != nil && strings.TrimSpace(*input.Email) != "" {
				existing.Email = input.Email
				if _, err := txRepo.Update(ctx, existing); err != nil {
					return err
				}
			}
			sessionID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := &models.CheckoutSession{
			CartID:    cartRecord.ID,
			UserID:    owner.UserID,
			SessionID: owner.SessionID,
			Phone:     input.Phone,
		}
		if owner.IsUser() {
			email := strings.TrimSpace(input.UserEmail)
			if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
				email = strings.TrimSpace(*input.Email)
			}
			if email != "" {
				record.Email = &email
			}
		} else {
			if input.Email == nil || strings.TrimSpace(*input.Email) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "guest checkout requires an email address")
			}
			email := strings.TrimSpace(*input.Email)
			record.Email = &email
		}

		created, err := txRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		sessionID = created.ID
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve checkout session")
	}

	return s.FindByID(ctx, sessionID)
}

// FindByID loads a session with its cart and shipping graph.
func (s *service) FindByID(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	record, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout session")
	}
	return record, nil
}

// FindOwned loads a session in any state, hiding it from non-owners.
func (s *service) FindOwned(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	record, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ownerMatches(owner, &record.Cart) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return record, nil
}

func (s *service) requireOwnedPending(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	record, err := s.FindOwned(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if record.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session is no longer pending").
			WithDetails(map[string]any{"payment_status": record.PaymentStatus.String()})
	}
	return record, nil
}

func ownerMatches(owner types.OwnerKey, cartRecord *models.Cart) bool {
	if owner.IsUser() {
		return cartRecord.UserID != nil && *cartRecord.UserID == *owner.UserID
	}
	return cartRecord.UserID == nil && cartRecord.SessionID != nil && *cartRecord.SessionID == *owner.SessionID
}

// SetShippingOption attaches a shipping option to a pending session.
func (s *service) SetShippingOption(ctx context.Context, owner types.OwnerKey, sessionID, optionID uuid.UUID) (*models.CheckoutSession, error) {
	record, err := s.requireOwnedPending(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}

	option, err := s.shippingRepo.FindOptionByID(ctx, optionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping option not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping option")
	}
	if !option.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping option is not available")
	}

	record.ShippingOptionID = &option.ID
	if _, err := s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}
	return s.FindByID(ctx, record.ID)
}

// SetAddresses attaches shipping/billing addresses to a pending session.
func (s *service) SetAddresses(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID, shippingAddressID, billingAddressID *uuid.UUID) (*models.CheckoutSession, error) {
	record, err := s.requireOwnedPending(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if shippingAddressID != nil {
		record.ShippingAddressID = shippingAddressID
	}
	if billingAddressID != nil {
		record.BillingAddressID = billingAddressID
	}
	if _, err := s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}
	return s.FindByID(ctx, record.ID)
}

// Quote derives the session's money summary. Shipping is free without an
// option, or when the discounted subtotal clears the threshold on a
// qualifying speed; the grand total rounds up while per-amount conversions
// round half up.
func (s *service) Quote(ctx context.Context, record *models.CheckoutSession) (Quote, error) {
	threshold, err := s.shippingCfg.FreeThreshold()
	if err != nil {
		return Quote{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse free shipping threshold")
	}

	totals := cart.Price(&record.Cart, s.now())
	shipQuote := shipping.Cost(record.ShippingOption, totals.DiscountedTotal, threshold)

	return Quote{
		Totals:        totals,
		Shipping:      shipQuote,
		SubtotalCents: shipping.MajorToCents(totals.BaseTotal),
		DiscountCents: shipping.MajorToCents(totals.TotalSavings),
		ShippingCents: shipQuote.CostCents,
		TotalCents:    shipping.TotalWithShippingCents(totals.DiscountedTotal, shipQuote.Cost),
	}, nil
}

// CreatePaymentSession creates the processor-hosted payment page for a
// pending session and records the processor identifiers and amounts.
func (s *service) CreatePaymentSession(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*PaymentSessionResult, error) {
	record, err := s.requireOwnedPending(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}
	if record.Email == nil || strings.TrimSpace(*record.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no email address")
	}
	if len(record.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	quote, err := s.Quote(ctx, record)
	if err != nil {
		return nil, err
	}

	params := s.buildStripeParams(record, quote)
	stripeSession, err := s.payments.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	record.StripeSessionID = &stripeSession.ID
	if stripeSession.PaymentIntent != nil {
		record.StripePaymentIntentID = &stripeSession.PaymentIntent.ID
	}
	record.SubtotalCents = quote.SubtotalCents
	record.DiscountCents = quote.DiscountCents
	record.ShippingCents = quote.ShippingCents
	record.TotalCents = quote.TotalCents
	if _, err := s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}

	return &PaymentSessionResult{ID: stripeSession.ID, URL: stripeSession.URL}, nil
}

func (s *service) buildStripeParams(record *models.CheckoutSession, quote Quote) *stripe.CheckoutSessionParams {
	currency := strings.ToLower(s.shippingCfg.Currency)
	base := strings.TrimRight(s.frontendCfg.BaseURL, "/")

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: record.Email,
		SuccessURL:    stripe.String(base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(base + "/checkout/cancelled"),
		ExpiresAt:     stripe.Int64(s.now().Add(s.stripeCfg.SessionExpiry).Unix()),
	}
	params.AddMetadata("checkout_session_id", record.ID.String())

	for _, priced := range quote.Totals.Items {
		item := priced.Item
		line := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
		}
		if item.Product.StripePriceID != "" {
			line.Price = stripe.String(item.Product.StripePriceID)
		} else {
			line.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(shipping.MajorToCents(item.Product.BasePrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Product.Name),
				},
			}
		}
		params.LineItems = append(params.LineItems, line)
	}

	discount := record.Cart.Discount
	if discount != nil && discount.StripeID != "" && quote.Totals.TotalSavings.GreaterThan(decimal.Zero) {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(discount.StripeID)},
		}
	}

	if record.ShippingOption != nil {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					DisplayName: stripe.String(record.ShippingOption.Name),
					Type:        stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(quote.ShippingCents),
						Currency: stripe.String(currency),
					},
				},
			},
		}
	}

	return params
}

// MarkPaid transitions a session to PAID. Reprocessing an already paid
// session is a no-op reported through the changed flag.
func (s *service) MarkPaid(ctx context.Context, sessionID uuid.UUID, paymentRef string) (*models.CheckoutSession, bool, error) {
	record, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if record.PaymentStatus == enums.PaymentStatusPaid {
		return record, false, nil
	}
	if !record.PaymentStatus.CanTransitionTo(enums.PaymentStatusPaid) {
		return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session cannot transition to paid").
			WithDetails(map[string]any{"payment_status": record.PaymentStatus.String()})
	}

	record.PaymentStatus = enums.PaymentStatusPaid
	if paymentRef != "" {
		record.StripePaymentIntentID = &paymentRef
	}
	if _, err := s.repo.Update(ctx, record); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}
	return record, true, nil
}

// MarkFailed transitions a session to FAILED; terminal states are left alone.
func (s *service) MarkFailed(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error) {
	return s.markTerminal(ctx, sessionID, enums.PaymentStatusFailed)
}

// MarkCancelled transitions a session to CANCELLED, typically when the
// processor-hosted page expires unused.
func (s *service) MarkCancelled(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error) {
	return s.markTerminal(ctx, sessionID, enums.PaymentStatusCancelled)
}

func (s *service) markTerminal(ctx context.Context, sessionID uuid.UUID, to enums.PaymentStatus) (*models.CheckoutSession, bool, error) {
	record, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if record.PaymentStatus.IsTerminal() {
		return record, false, nil
	}

	record.PaymentStatus = to
	if _, err := s.repo.Update(ctx, record); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}
	return record, true, nil
}
