package leads

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
)

// LeadRepository defines the persistence surface for leads.
type LeadRepository interface {
	Create(ctx context.Context, record *models.Lead) (*models.Lead, error)
	FindByEmailAndType(ctx context.Context, email string, leadType enums.LeadType) (*models.Lead, error)
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Create(ctx context.Context, record *models.Lead) (*models.Lead, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) FindByEmailAndType(ctx context.Context, email string, leadType enums.LeadType) (*models.Lead, error) {
	var record models.Lead
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) AND type = ?", email, leadType).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
