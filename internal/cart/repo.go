package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/types"
)

// Repository exposes persistence operations for carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) preloaded(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.BoxCustomization").
		Preload("Items.BoxCustomization.FlavorSelections").
		Preload("Items.BoxCustomization.Allergens").
		Preload("Discount").
		Preload("Discount.Exclusions")
}

func ownerScope(owner types.OwnerKey) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if owner.IsUser() {
			return q.Where("user_id = ?", *owner.UserID)
		}
		// session carts must never alias a user's cart
		return q.Where("user_id IS NULL AND session_id = ?", *owner.SessionID)
	}
}

// FindActiveForOwner loads the most recent active cart for the owner. With
// lock set, the matching row is locked FOR UPDATE for the remainder of the
// transaction so concurrent first-touch requests serialize on check-then-create.
func (r *Repository) FindActiveForOwner(ctx context.Context, owner types.OwnerKey, lock bool) (*models.Cart, error) {
	q := r.db.WithContext(ctx)
	if lock && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "carts"}})
	}
	var record models.Cart
	err := r.preloaded(q).
		Scopes(ownerScope(owner)).
		Where("active = ?", true).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDForOwner returns a cart restricted to the provided owner.
func (r *Repository) FindByIDForOwner(ctx context.Context, id uuid.UUID, owner types.OwnerKey) (*models.Cart, error) {
	var record models.Cart
	err := r.preloaded(r.db.WithContext(ctx)).
		Scopes(ownerScope(owner)).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new cart.
func (r *Repository) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Active = true
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update saves the provided cart.
func (r *Repository) Update(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Omit("Items", "Discount").Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// CreateItem inserts a cart item with its box customization graph in one go.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.BoxCustomization != nil {
		if item.BoxCustomization.ID == uuid.Nil {
			item.BoxCustomization.ID = uuid.New()
		}
		item.BoxCustomization.CartItemID = item.ID
		for i := range item.BoxCustomization.FlavorSelections {
			if item.BoxCustomization.FlavorSelections[i].ID == uuid.Nil {
				item.BoxCustomization.FlavorSelections[i].ID = uuid.New()
			}
			item.BoxCustomization.FlavorSelections[i].BoxCustomizationID = item.BoxCustomization.ID
		}
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindItem returns an item restricted to the provided cart.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("BoxCustomization").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItemQuantity sets the quantity on an item.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes an item from a cart.
func (r *Repository) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Delete(&models.CartItem{}).Error
}

// Deactivate flips the cart's active flag off.
func (r *Repository) Deactivate(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("active", false).Error
}
