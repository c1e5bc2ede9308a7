package mails

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type ledgerKey struct {
	kind       enums.EmailKind
	targetKind enums.EmailTargetKind
	targetID   uuid.UUID
}

type stubEmailRepo struct {
	records map[ledgerKey]*models.EmailSent
}

func newStubEmailRepo() *stubEmailRepo {
	return &stubEmailRepo{records: make(map[ledgerKey]*models.EmailSent)}
}

func (r *stubEmailRepo) WithTx(_ *gorm.DB) EmailRepository { return r }

func (r *stubEmailRepo) Exists(_ context.Context, kind enums.EmailKind, targetKind enums.EmailTargetKind, targetID uuid.UUID) (bool, error) {
	_, ok := r.records[ledgerKey{kind, targetKind, targetID}]
	return ok, nil
}

func (r *stubEmailRepo) Create(_ context.Context, record *models.EmailSent) (*models.EmailSent, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.records[ledgerKey{record.Kind, record.TargetKind, record.TargetID}] = record
	return record, nil
}

func (r *stubEmailRepo) Update(_ context.Context, record *models.EmailSent) (*models.EmailSent, error) {
	r.records[ledgerKey{record.Kind, record.TargetKind, record.TargetID}] = record
	return record, nil
}

type stubSender struct {
	sent     []Message
	failLeft int
}

func (s *stubSender) Send(_ context.Context, msg Message) error {
	if s.failLeft > 0 {
		s.failLeft--
		return errors.New("relay unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newMailService(t *testing.T, repo EmailRepository, sender Sender) Service {
	t.Helper()
	svc, err := NewService(repo, sender, logger.New(logger.Options{}), nil, config.FrontendConfig{BaseURL: "https://www.casspea.test"})
	require.NoError(t, err)
	return svc
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "CP26-K7QD",
		Email:         "guest@example.com",
		SubtotalCents: 3995,
		ShippingCents: 495,
		TotalCents:    4490,
		Items: []models.OrderItem{
			{ProductName: "Signature Box of 24", Quantity: 1, LineTotalCents: 3995},
		},
	}
}

func TestSendOrderConfirmationAtMostOnce(t *testing.T) {
	repo := newStubEmailRepo()
	sender := &stubSender{}
	svc := newMailService(t, repo, sender)

	order := sampleOrder()
	sent, err := svc.SendOrderConfirmation(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "guest@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "CP26-K7QD")
	assert.Contains(t, sender.sent[0].Body, "£44.90")

	sent, err = svc.SendOrderConfirmation(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Len(t, sender.sent, 1)
}

func TestSendOrderConfirmationFailureStillDedupes(t *testing.T) {
	repo := newStubEmailRepo()
	sender := &stubSender{failLeft: 10}
	svc := newMailService(t, repo, sender)

	order := sampleOrder()
	sent, err := svc.SendOrderConfirmation(context.Background(), order)
	require.Error(t, err)
	assert.False(t, sent)

	key := ledgerKey{enums.EmailKindOrderPaid, enums.EmailTargetOrder, order.ID}
	record := repo.records[key]
	require.NotNil(t, record)
	assert.Equal(t, enums.EmailStatusFailed, record.Status)
	require.NotNil(t, record.Error)

	// The failed attempt is still on the ledger, so no second send happens.
	sent, err = svc.SendOrderConfirmation(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestSendRetriesTransientFailure(t *testing.T) {
	repo := newStubEmailRepo()
	sender := &stubSender{failLeft: 1}
	svc := newMailService(t, repo, sender)

	sent, err := svc.SendOrderConfirmation(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Len(t, sender.sent, 1)
}

func TestSendNewsletterWelcome(t *testing.T) {
	repo := newStubEmailRepo()
	sender := &stubSender{}
	svc := newMailService(t, repo, sender)

	lead := &models.Lead{ID: uuid.New(), Type: enums.LeadTypeNewsletter, Email: "reader@example.com"}
	sent, err := svc.SendNewsletterWelcome(context.Background(), lead)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Welcome to CassPea", sender.sent[0].Subject)
}
