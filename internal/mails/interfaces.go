package mails

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
)

// EmailRepository defines the persistence surface for the email send ledger.
type EmailRepository interface {
	WithTx(tx *gorm.DB) EmailRepository
	Exists(ctx context.Context, kind enums.EmailKind, targetKind enums.EmailTargetKind, targetID uuid.UUID) (bool, error)
	Create(ctx context.Context, record *models.EmailSent) (*models.EmailSent, error)
	Update(ctx context.Context, record *models.EmailSent) (*models.EmailSent, error)
}

// Message is a rendered email ready for transport.
type Message struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Sender delivers a rendered message over some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
