package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casspea/casspea-backend/pkg/enums"
)

type ShippingCompany struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Options []ShippingOption `gorm:"foreignKey:CompanyID"`
}

func (ShippingCompany) TableName() string { return "shipping_companies" }

// ShippingOption is a priced delivery service offered by a company.
type ShippingOption struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index"`
	Company   ShippingCompany `gorm:"foreignKey:CompanyID"`

	Name          string              `gorm:"column:name;not null"`
	DeliverySpeed enums.DeliverySpeed `gorm:"column:delivery_speed;not null"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`

	EstimatedDaysMin int `gorm:"column:estimated_days_min;not null;default:1"`
	EstimatedDaysMax int `gorm:"column:estimated_days_max;not null;default:3"`

	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShippingOption) TableName() string { return "shipping_options" }
