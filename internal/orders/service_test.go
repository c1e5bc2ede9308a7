package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
)

type stubOrderRepo struct {
	orders      map[uuid.UUID]*models.Order
	createCalls int
	createErrs  []error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (r *stubOrderRepo) WithTx(_ *gorm.DB) OrderRepository { return r }

func (r *stubOrderRepo) Create(_ context.Context, record *models.Order) (*models.Order, error) {
	r.createCalls++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.orders[record.ID] = record
	return record, nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	record, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *stubOrderRepo) FindByCheckoutSessionID(_ context.Context, checkoutSessionID uuid.UUID) (*models.Order, error) {
	for _, record := range r.orders {
		if record.CheckoutSessionID == checkoutSessionID {
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	for _, record := range r.orders {
		if record.OrderNumber == orderNumber {
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, record := range r.orders {
		if record.UserID != nil && *record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, from *enums.OrderStatus, to enums.OrderStatus, note string) error {
	record, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = to
	record.StatusHistory = append(record.StatusHistory, models.OrderStatusHistory{
		OrderID:    id,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
	})
	return nil
}

func paidSession(t *testing.T) *models.CheckoutSession {
	t.Helper()

	email := "guest@example.com"
	gift := "Happy birthday"
	return &models.CheckoutSession{
		ID:            uuid.New(),
		CartID:        uuid.New(),
		Email:         &email,
		PaymentStatus: enums.PaymentStatusPaid,
		SubtotalCents: 3995,
		DiscountCents: 0,
		ShippingCents: 495,
		TotalCents:    4490,
		Cart: models.Cart{
			GiftMessage: &gift,
			Items: []models.CartItem{
				{
					ID:        uuid.New(),
					ProductID: uuid.New(),
					Quantity:  1,
					Product: models.Product{
						Name:      "Signature Box of 24",
						BasePrice: decimal.RequireFromString("39.95"),
					},
					BoxCustomization: &models.CartItemBoxCustomization{
						SelectionType: enums.SelectionTypeRandom,
					},
				},
			},
		},
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^CP26-[23456789ABCDEFGHJKLMNPQRSTUVWXYZ]{4}$`)

	for i := 0; i < 50; i++ {
		number, err := NewOrderNumber(now)
		require.NoError(t, err)
		assert.Regexp(t, pattern, number)
	}
}

func TestCreateFromCheckoutSessionSnapshotsCart(t *testing.T) {
	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	session := paidSession(t)
	record, created, err := svc.CreateFromCheckoutSession(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, created)

	assert.Equal(t, session.ID, record.CheckoutSessionID)
	assert.Equal(t, "guest@example.com", record.Email)
	assert.Equal(t, enums.OrderStatusProcessing, record.Status)
	assert.EqualValues(t, 4490, record.TotalCents)
	require.NotNil(t, record.GiftMessage)
	assert.Equal(t, "Happy birthday", *record.GiftMessage)

	require.Len(t, record.Items, 1)
	item := record.Items[0]
	assert.Equal(t, "Signature Box of 24", item.ProductName)
	assert.EqualValues(t, 3995, item.UnitPriceCents)
	assert.EqualValues(t, 3995, item.LineTotalCents)
	require.NotNil(t, item.SelectionType)
	assert.Equal(t, enums.SelectionTypeRandom, *item.SelectionType)

	require.Len(t, record.StatusHistory, 1)
	assert.Equal(t, enums.OrderStatusProcessing, record.StatusHistory[0].ToStatus)
}

func TestCreateFromCheckoutSessionIsIdempotent(t *testing.T) {
	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	session := paidSession(t)
	first, created, err := svc.CreateFromCheckoutSession(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.CreateFromCheckoutSession(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.createCalls)
}

func TestCreateFromCheckoutSessionRejectsUnpaid(t *testing.T) {
	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	session := paidSession(t)
	session.PaymentStatus = enums.PaymentStatusPending

	_, _, err = svc.CreateFromCheckoutSession(context.Background(), session)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
	assert.Zero(t, repo.createCalls)
}

func TestCreateFromCheckoutSessionRetriesNumberCollision(t *testing.T) {
	repo := newStubOrderRepo()
	repo.createErrs = []error{
		assert.AnError,
	}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, _, err = svc.CreateFromCheckoutSession(context.Background(), paidSession(t))
	require.Error(t, err)

	repo = newStubOrderRepo()
	repo.createErrs = []error{
		errDuplicateNumber{},
		nil,
	}
	svc, err = NewService(repo)
	require.NoError(t, err)

	record, created, err := svc.CreateFromCheckoutSession(context.Background(), paidSession(t))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, record.OrderNumber)
	assert.Equal(t, 2, repo.createCalls)
}

type errDuplicateNumber struct{}

func (errDuplicateNumber) Error() string {
	return `duplicate key value violates unique constraint "orders_order_number_key"`
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	record, _, err := svc.CreateFromCheckoutSession(context.Background(), paidSession(t))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), record.ID, enums.OrderStatusShipped, "dispatched via tracked 24")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)

	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	require.NotNil(t, last.FromStatus)
	assert.Equal(t, enums.OrderStatusProcessing, *last.FromStatus)
	assert.Equal(t, enums.OrderStatusShipped, last.ToStatus)
}

func TestUpdateStatusNoOpWhenUnchanged(t *testing.T) {
	repo := newStubOrderRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	record, _, err := svc.CreateFromCheckoutSession(context.Background(), paidSession(t))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), record.ID, enums.OrderStatusProcessing, "no change")
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 1)
}
