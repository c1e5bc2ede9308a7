package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// EmailSent records every message the system attempted to deliver.
// Target is a tagged reference: kind names the table, target id the row.
// A confirmation is sent at most once per (kind, target) pair.
type EmailSent struct {
	ID uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`

	Kind       enums.EmailKind       `gorm:"column:kind;not null;index:idx_email_sent_target"`
	TargetKind enums.EmailTargetKind `gorm:"column:target_kind;not null;index:idx_email_sent_target"`
	TargetID   uuid.UUID             `gorm:"column:target_id;type:uuid;not null;index:idx_email_sent_target"`

	Recipient string            `gorm:"column:recipient;not null"`
	Subject   string            `gorm:"column:subject;not null"`
	Status    enums.EmailStatus `gorm:"column:status;not null;default:'pending'"`
	Error     *string           `gorm:"column:error"`

	SentAt    *time.Time `gorm:"column:sent_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (EmailSent) TableName() string { return "emails_sent" }
