package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type stubLeadRepo struct {
	leads []*models.Lead
}

func (r *stubLeadRepo) Create(_ context.Context, record *models.Lead) (*models.Lead, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	r.leads = append(r.leads, record)
	return record, nil
}

func (r *stubLeadRepo) FindByEmailAndType(_ context.Context, email string, leadType enums.LeadType) (*models.Lead, error) {
	for _, record := range r.leads {
		if record.Email == email && record.Type == leadType {
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubMailService struct {
	welcomes int
	acks     int
	err      error
}

func (m *stubMailService) SendOrderConfirmation(_ context.Context, _ *models.Order) (bool, error) {
	return false, nil
}

func (m *stubMailService) SendNewsletterWelcome(_ context.Context, _ *models.Lead) (bool, error) {
	m.welcomes++
	return m.err == nil, m.err
}

func (m *stubMailService) SendContactAcknowledgement(_ context.Context, _ *models.Lead) (bool, error) {
	m.acks++
	return m.err == nil, m.err
}

func newLeadService(t *testing.T, repo LeadRepository, mail *stubMailService) Service {
	t.Helper()
	svc, err := NewService(repo, mail, logger.New(logger.Options{}))
	require.NoError(t, err)
	return svc
}

func TestSubscribeCreatesLeadAndSendsWelcome(t *testing.T) {
	repo := &stubLeadRepo{}
	mail := &stubMailService{}
	svc := newLeadService(t, repo, mail)

	record, err := svc.Subscribe(context.Background(), "  Reader@Example.com ", nil)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", record.Email)
	assert.Equal(t, enums.LeadTypeNewsletter, record.Type)
	assert.Equal(t, 1, mail.welcomes)
}

func TestSubscribeTwiceReusesLead(t *testing.T) {
	repo := &stubLeadRepo{}
	mail := &stubMailService{}
	svc := newLeadService(t, repo, mail)

	first, err := svc.Subscribe(context.Background(), "reader@example.com", nil)
	require.NoError(t, err)
	second, err := svc.Subscribe(context.Background(), "reader@example.com", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.leads, 1)
	assert.Equal(t, 1, mail.welcomes)
}

func TestSubscribeRequiresEmail(t *testing.T) {
	svc := newLeadService(t, &stubLeadRepo{}, &stubMailService{})

	_, err := svc.Subscribe(context.Background(), "   ", nil)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestSubmitContactSurvivesMailFailure(t *testing.T) {
	repo := &stubLeadRepo{}
	mail := &stubMailService{err: errors.New("relay down")}
	svc := newLeadService(t, repo, mail)

	subject := "Wholesale enquiry"
	record, err := svc.SubmitContact(context.Background(), ContactInput{
		Email:   "buyer@example.com",
		Subject: &subject,
		Message: "Do you offer wholesale pricing?",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.LeadTypeContactForm, record.Type)
	require.NotNil(t, record.Message)
	assert.Equal(t, 1, mail.acks)
}

func TestSubmitContactRequiresMessage(t *testing.T) {
	svc := newLeadService(t, &stubLeadRepo{}, &stubMailService{})

	_, err := svc.SubmitContact(context.Background(), ContactInput{Email: "buyer@example.com"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
