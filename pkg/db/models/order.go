package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// Order is the durable record created once a checkout session is paid.
// OrderNumber is the human-facing reference printed on confirmations.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex"`

	CheckoutSessionID uuid.UUID       `gorm:"column:checkout_session_id;type:uuid;not null;uniqueIndex"`
	CheckoutSession   CheckoutSession `gorm:"foreignKey:CheckoutSessionID"`

	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	Email  string     `gorm:"column:email;not null"`

	Status enums.OrderStatus `gorm:"column:status;not null;default:'processing'"`

	SubtotalCents int64 `gorm:"column:subtotal_cents;not null"`
	DiscountCents int64 `gorm:"column:discount_cents;not null"`
	ShippingCents int64 `gorm:"column:shipping_cents;not null"`
	TotalCents    int64 `gorm:"column:total_cents;not null"`

	DiscountCode *string    `gorm:"column:discount_code"`
	GiftMessage  *string    `gorm:"column:gift_message"`
	ShippingDate *time.Time `gorm:"column:shipping_date"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	PaidAt    time.Time `gorm:"column:paid_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) Total() decimal.Decimal {
	return decimal.New(o.TotalCents, -2)
}

// OrderItem snapshots a cart item at payment time so later catalogue
// edits do not rewrite history.
type OrderItem struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string          `gorm:"column:product_name;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	UnitPriceCents int64           `gorm:"column:unit_price_cents;not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	LineTotalCents int64           `gorm:"column:line_total_cents;not null"`

	SelectionType *enums.SelectionType `gorm:"column:selection_type"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string { return "order_items" }

type OrderStatusHistory struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`

	FromStatus *enums.OrderStatus `gorm:"column:from_status"`
	ToStatus   enums.OrderStatus  `gorm:"column:to_status;not null"`
	Note       string             `gorm:"column:note"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderStatusHistory) TableName() string { return "order_status_history" }
