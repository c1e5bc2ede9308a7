package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/internal/shipping"
	"github.com/casspea/casspea-backend/pkg/db"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
)

// orderNumberAttempts bounds retries on an order number collision.
const orderNumberAttempts = 3

// Service owns order creation and fulfilment status changes.
type Service interface {
	CreateFromCheckoutSession(ctx context.Context, session *models.CheckoutSession) (*models.Order, bool, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, note string) (*models.Order, error)
}

type service struct {
	repo OrderRepository
	now  func() time.Time
}

func NewService(repo OrderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// CreateFromCheckoutSession turns a paid session into an order. Calling it
// again for the same session returns the existing order with created=false,
// so webhook redeliveries never duplicate orders.
func (s *service) CreateFromCheckoutSession(ctx context.Context, session *models.CheckoutSession) (*models.Order, bool, error) {
	if session == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "checkout session required")
	}
	if session.PaymentStatus != enums.PaymentStatusPaid {
		return nil, false, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session is not paid").
			WithDetails(map[string]any{"payment_status": session.PaymentStatus.String()})
	}
	if session.Email == nil || *session.Email == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "checkout session has no email address")
	}

	existing, err := s.repo.FindByCheckoutSessionID(ctx, session.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up existing order")
	}

	record := s.buildOrder(session)

	var created *models.Order
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number, err := NewOrderNumber(s.now())
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
		}
		record.OrderNumber = number

		created, err = s.repo.Create(ctx, record)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "orders_order_number_key") {
			continue
		}
		// A concurrent webhook delivery may have won the session race.
		if db.IsUniqueViolation(err, "") {
			if existing, findErr := s.repo.FindByCheckoutSessionID(ctx, session.ID); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	if created == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number")
	}
	return created, true, nil
}

func (s *service) buildOrder(session *models.CheckoutSession) *models.Order {
	record := &models.Order{
		ID:                uuid.New(),
		CheckoutSessionID: session.ID,
		UserID:            session.UserID,
		Email:             *session.Email,
		Status:            enums.OrderStatusProcessing,
		SubtotalCents:     session.SubtotalCents,
		DiscountCents:     session.DiscountCents,
		ShippingCents:     session.ShippingCents,
		TotalCents:        session.TotalCents,
		GiftMessage:       session.Cart.GiftMessage,
		ShippingDate:      session.Cart.ShippingDate,
		PaidAt:            s.now(),
	}
	if discount := session.Cart.Discount; discount != nil {
		record.DiscountCode = &discount.Code
	}

	for i := range session.Cart.Items {
		item := &session.Cart.Items[i]
		unitCents := shipping.MajorToCents(item.Product.BasePrice)
		snapshot := models.OrderItem{
			ProductID:      item.ProductID,
			ProductName:    item.Product.Name,
			UnitPrice:      item.Product.BasePrice,
			UnitPriceCents: unitCents,
			Quantity:       item.Quantity,
			LineTotalCents: unitCents * int64(item.Quantity),
		}
		if item.BoxCustomization != nil {
			selection := item.BoxCustomization.SelectionType
			snapshot.SelectionType = &selection
		}
		record.Items = append(record.Items, snapshot)
	}

	record.StatusHistory = []models.OrderStatusHistory{
		{ToStatus: enums.OrderStatusProcessing, Note: "order created"},
	}
	return record
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	record, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return record, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	records, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return records, nil
}

// UpdateStatus moves an order along fulfilment and records the transition.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, note string) (*models.Order, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	record, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if record.Status == to {
		return record, nil
	}

	from := record.Status
	if err := s.repo.UpdateStatus(ctx, orderID, &from, to, note); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order status")
	}
	return s.repo.FindByID(ctx, orderID)
}
