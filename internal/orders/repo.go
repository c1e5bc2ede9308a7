package orders

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

func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	return &Repository{db: tx}
}

func (r *Repository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.created_at ASC")
		})
}

// Create persists the order with its item snapshots and opening history row.
func (r *Repository) Create(ctx context.Context, record *models.Order) (*models.Order, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	for i := range record.Items {
		if record.Items[i].ID == uuid.Nil {
			record.Items[i].ID = uuid.New()
		}
		record.Items[i].OrderID = record.ID
	}
	for i := range record.StatusHistory {
		if record.StatusHistory[i].ID == uuid.Nil {
			record.StatusHistory[i].ID = uuid.New()
		}
		record.StatusHistory[i].OrderID = record.ID
	}
	if err := r.db.WithContext(ctx).Omit("CheckoutSession").Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var record models.Order
	if err := r.preloaded(ctx).First(&record, "orders.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) FindByCheckoutSessionID(ctx context.Context, checkoutSessionID uuid.UUID) (*models.Order, error) {
	var record models.Order
	if err := r.preloaded(ctx).First(&record, "orders.checkout_session_id = ?", checkoutSessionID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var record models.Order
	if err := r.preloaded(ctx).First(&record, "orders.order_number = ?", orderNumber).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var records []models.Order
	err := r.preloaded(ctx).
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus moves the order to a new status and appends a history row in
// the same transaction.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from *enums.OrderStatus, to enums.OrderStatus, note string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).Where("id = ?", id).Update("status", to)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		history := models.OrderStatusHistory{
			ID:         uuid.New(),
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			Note:       note,
		}
		return tx.Create(&history).Error
	})
}
