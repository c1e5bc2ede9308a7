package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCategory groups products for the storefront.
type ProductCategory struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex"`
	Description string    `gorm:"column:description"`
	Active      bool      `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Product is a chocolate box for sale.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Slug        string          `gorm:"column:slug;not null;uniqueIndex"`
	Description string          `gorm:"column:description"`
	CategoryID  uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category    ProductCategory `gorm:"foreignKey:CategoryID"`

	BasePrice     decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null"`
	StripePriceID string          `gorm:"column:stripe_price_id"`
	WeightGrams   int             `gorm:"column:weight_grams;not null;default:0"`
	UnitsPerBox   int             `gorm:"column:units_per_box;not null"`

	Active  bool `gorm:"column:active;not null;default:true"`
	SoldOut bool `gorm:"column:sold_out;not null;default:false"`

	MainColor      string `gorm:"column:main_color"`
	SecondaryColor string `gorm:"column:secondary_color"`
	SEOTitle       string `gorm:"column:seo_title"`
	SEODescription string `gorm:"column:seo_description"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
