package mails

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) WithTx(tx *gorm.DB) EmailRepository {
	return &Repository{db: tx}
}

// Exists reports whether a send was ever recorded for the target, regardless
// of whether it ultimately succeeded.
func (r *Repository) Exists(ctx context.Context, kind enums.EmailKind, targetKind enums.EmailTargetKind, targetID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EmailSent{}).
		Where("kind = ? AND target_kind = ? AND target_id = ?", kind, targetKind, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, record *models.EmailSent) (*models.EmailSent, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = enums.EmailStatusPending
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) Update(ctx context.Context, record *models.EmailSent) (*models.EmailSent, error) {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
