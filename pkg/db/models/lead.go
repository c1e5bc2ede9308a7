package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// Lead holds newsletter signups and contact form submissions.
type Lead struct {
	ID   uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type enums.LeadType `gorm:"column:type;not null;index"`

	Email   string  `gorm:"column:email;not null;index"`
	Name    *string `gorm:"column:name"`
	Phone   *string `gorm:"column:phone"`
	Subject *string `gorm:"column:subject"`
	Message *string `gorm:"column:message"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
