package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// Cart is the mutable aggregate a shopper fills before checkout. Exactly one
// of UserID/SessionID is set; at most one active cart exists per owner.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	User      *User      `gorm:"foreignKey:UserID"`
	SessionID *string    `gorm:"column:session_id;index"`

	DiscountID *uuid.UUID `gorm:"column:discount_id;type:uuid"`
	Discount   *Discount  `gorm:"foreignKey:DiscountID"`

	GiftMessage  *string    `gorm:"column:gift_message"`
	ShippingDate *time.Time `gorm:"column:shipping_date"`

	Active bool       `gorm:"column:active;not null;default:true;index"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one product line in a cart.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Product   Product   `gorm:"foreignKey:ProductID"`
	Quantity  int       `gorm:"column:quantity;not null;default:1"`

	BoxCustomization *CartItemBoxCustomization `gorm:"foreignKey:CartItemID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItemBoxCustomization configures how an assortment box is filled.
type CartItemBoxCustomization struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartItemID    uuid.UUID           `gorm:"column:cart_item_id;type:uuid;not null;uniqueIndex"`
	SelectionType enums.SelectionType `gorm:"column:selection_type;not null"`

	FlavorSelections []CartItemBoxFlavorSelection `gorm:"foreignKey:BoxCustomizationID;constraint:OnDelete:CASCADE"`
	Allergens        []Allergen                   `gorm:"many2many:cart_item_box_allergens"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CartItemBoxFlavorSelection is one chosen flavor and its count within a box.
type CartItemBoxFlavorSelection struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BoxCustomizationID uuid.UUID `gorm:"column:box_customization_id;type:uuid;not null;index"`
	FlavorID           uuid.UUID `gorm:"column:flavor_id;type:uuid;not null"`
	Flavor             Flavour   `gorm:"foreignKey:FlavorID"`
	Quantity           int       `gorm:"column:quantity;not null;default:1"`
}
