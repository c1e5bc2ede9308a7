package models

import (
	"time"

	"github.com/google/uuid"
)

// Allergen is a reference record shoppers can exclude from a box.
type Allergen struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FlavourCategory groups flavours on the pick-and-mix screen.
type FlavourCategory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Flavour is an individual chocolate available inside an assortment box.
type Flavour struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Slug            string          `gorm:"column:slug;not null;uniqueIndex"`
	Description     string          `gorm:"column:description"`
	MiniDescription string          `gorm:"column:mini_description"`
	ImageURL        string          `gorm:"column:image_url"`
	CategoryID      uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Category        FlavourCategory `gorm:"foreignKey:CategoryID"`
	Allergens       []Allergen      `gorm:"many2many:flavour_allergens"`
	Active          bool            `gorm:"column:active;not null;default:true"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
