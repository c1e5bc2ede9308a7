package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	"github.com/casspea/casspea-backend/pkg/types"
)

// AddressRepository defines the persistence surface required by the service.
type AddressRepository interface {
	WithTx(tx *gorm.DB) AddressRepository
	Create(ctx context.Context, record *models.Address) (*models.Address, error)
	Update(ctx context.Context, record *models.Address) (*models.Address, error)
	FindByIDForOwner(ctx context.Context, id uuid.UUID, owner types.OwnerKey) (*models.Address, error)
	ListForOwner(ctx context.Context, owner types.OwnerKey) ([]models.Address, error)
	ClearDefaults(ctx context.Context, owner types.OwnerKey, addressType enums.AddressType, exceptID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, owner types.OwnerKey) error
}

// Repository exposes persistence operations for addresses.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) AddressRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ownerScope(owner types.OwnerKey) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if owner.IsUser() {
			return q.Where("user_id = ?", *owner.UserID)
		}
		return q.Where("user_id IS NULL AND session_id = ?", *owner.SessionID)
	}
}

// Create inserts a new address.
func (r *Repository) Create(ctx context.Context, record *models.Address) (*models.Address, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update saves the provided address.
func (r *Repository) Update(ctx context.Context, record *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// FindByIDForOwner returns an address restricted to the provided owner.
func (r *Repository) FindByIDForOwner(ctx context.Context, id uuid.UUID, owner types.OwnerKey) (*models.Address, error) {
	var record models.Address
	err := r.db.WithContext(ctx).
		Scopes(r.ownerScope(owner)).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForOwner returns the owner's addresses, defaults first.
func (r *Repository) ListForOwner(ctx context.Context, owner types.OwnerKey) ([]models.Address, error) {
	var rows []models.Address
	if err := r.db.WithContext(ctx).
		Scopes(r.ownerScope(owner)).
		Order("is_default DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ClearDefaults unsets the default flag on the owner's other addresses of the
// same type.
func (r *Repository) ClearDefaults(ctx context.Context, owner types.OwnerKey, addressType enums.AddressType, exceptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Scopes(r.ownerScope(owner)).
		Where("address_type = ? AND id <> ?", addressType, exceptID).
		Update("is_default", false).Error
}

// Delete removes an owner's address.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, owner types.OwnerKey) error {
	return r.db.WithContext(ctx).
		Scopes(r.ownerScope(owner)).
		Where("id = ?", id).
		Delete(&models.Address{}).Error
}
