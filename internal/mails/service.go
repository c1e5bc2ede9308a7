package mails

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/metrics"
)

const (
	sendRetries        = 2
	sendInitialBackoff = 200 * time.Millisecond
)

// Service sends transactional email at most once per target. Every attempt
// is recorded in the emails_sent ledger before transport, so a crash between
// record and delivery errs on the side of not re-sending.
type Service interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) (bool, error)
	SendNewsletterWelcome(ctx context.Context, lead *models.Lead) (bool, error)
	SendContactAcknowledgement(ctx context.Context, lead *models.Lead) (bool, error)
}

type service struct {
	repo        EmailRepository
	sender      Sender
	logg        *logger.Logger
	met         *metrics.WebhookMetrics
	frontendCfg config.FrontendConfig
}

func NewService(repo EmailRepository, sender Sender, logg *logger.Logger, met *metrics.WebhookMetrics, frontendCfg config.FrontendConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("email repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, sender: sender, logg: logg, met: met, frontendCfg: frontendCfg}, nil
}

func (s *service) SendOrderConfirmation(ctx context.Context, order *models.Order) (bool, error) {
	if order == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.Email == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order has no email address")
	}
	msg := renderOrderConfirmation(order, s.frontendCfg.BaseURL)
	return s.sendOnce(ctx, enums.EmailKindOrderPaid, enums.EmailTargetOrder, order.ID, msg)
}

func (s *service) SendNewsletterWelcome(ctx context.Context, lead *models.Lead) (bool, error) {
	if lead == nil || lead.Email == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "lead with email required")
	}
	return s.sendOnce(ctx, enums.EmailKindNewsletter, enums.EmailTargetLead, lead.ID, renderNewsletterWelcome(lead))
}

func (s *service) SendContactAcknowledgement(ctx context.Context, lead *models.Lead) (bool, error) {
	if lead == nil || lead.Email == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "lead with email required")
	}
	return s.sendOnce(ctx, enums.EmailKindContact, enums.EmailTargetLead, lead.ID, renderContactAcknowledgement(lead))
}

// sendOnce returns (false, nil) when a send was already recorded for the
// target. A failed transport still counts as sent for dedup purposes; the
// ledger row carries the failure for operators to replay by hand.
func (s *service) sendOnce(ctx context.Context, kind enums.EmailKind, targetKind enums.EmailTargetKind, targetID uuid.UUID, msg Message) (bool, error) {
	exists, err := s.repo.Exists(ctx, kind, targetKind, targetID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email ledger")
	}
	if exists {
		return false, nil
	}

	record, err := s.repo.Create(ctx, &models.EmailSent{
		Kind:       kind,
		TargetKind: targetKind,
		TargetID:   targetID,
		Recipient:  msg.To,
		Subject:    msg.Subject,
		Status:     enums.EmailStatusPending,
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record email attempt")
	}

	sendErr := retry.Do(ctx, retry.WithMaxRetries(sendRetries, retry.NewExponential(sendInitialBackoff)), func(ctx context.Context) error {
		if err := s.sender.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})

	if sendErr != nil {
		errText := sendErr.Error()
		record.Status = enums.EmailStatusFailed
		record.Error = &errText
		if _, err := s.repo.Update(ctx, record); err != nil {
			s.logg.Error(ctx, "persist email failure", err)
		}
		if s.met != nil {
			s.met.IncEmail(kind.String(), "failed")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, "send email")
	}

	now := time.Now()
	record.Status = enums.EmailStatusSent
	record.SentAt = &now
	if _, err := s.repo.Update(ctx, record); err != nil {
		s.logg.Error(ctx, "persist email success", err)
	}
	if s.met != nil {
		s.met.IncEmail(kind.String(), "sent")
	}
	return true, nil
}
