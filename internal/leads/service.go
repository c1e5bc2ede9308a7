package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/internal/mails"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
)

// Service records newsletter signups and contact form submissions. Both
// trigger an acknowledgement email on a best-effort basis; a transport
// failure never fails the submission.
type Service interface {
	Subscribe(ctx context.Context, email string, name *string) (*models.Lead, error)
	SubmitContact(ctx context.Context, input ContactInput) (*models.Lead, error)
}

// ContactInput is a contact form submission.
type ContactInput struct {
	Email   string
	Name    *string
	Phone   *string
	Subject *string
	Message string
}

type service struct {
	repo LeadRepository
	mail mails.Service
	logg *logger.Logger
}

func NewService(repo LeadRepository, mail mails.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("lead repository required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, mail: mail, logg: logg}, nil
}

// Subscribe records a newsletter signup. Subscribing twice with the same
// address reuses the existing lead and sends no second welcome.
func (s *service) Subscribe(ctx context.Context, email string, name *string) (*models.Lead, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	existing, err := s.repo.FindByEmailAndType(ctx, email, enums.LeadTypeNewsletter)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up newsletter lead")
	}

	record, err := s.repo.Create(ctx, &models.Lead{
		Type:  enums.LeadTypeNewsletter,
		Email: email,
		Name:  name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist newsletter lead")
	}

	if _, err := s.mail.SendNewsletterWelcome(ctx, record); err != nil {
		s.logg.Error(ctx, "send newsletter welcome", err)
	}
	return record, nil
}

// SubmitContact records a contact form message and acknowledges it.
func (s *service) SubmitContact(ctx context.Context, input ContactInput) (*models.Lead, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	record, err := s.repo.Create(ctx, &models.Lead{
		Type:    enums.LeadTypeContactForm,
		Email:   email,
		Name:    input.Name,
		Phone:   input.Phone,
		Subject: input.Subject,
		Message: &message,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist contact lead")
	}

	if _, err := s.mail.SendContactAcknowledgement(ctx, record); err != nil {
		s.logg.Error(ctx, "send contact acknowledgement", err)
	}
	return record, nil
}
