package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/pkg/enums"
)

// Address belongs to a user or, for guest checkouts, a browser session.
type Address struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	SessionID *string    `gorm:"column:session_id;index"`

	AddressType enums.AddressType `gorm:"column:address_type;not null"`

	FirstName      string `gorm:"column:first_name"`
	LastName       string `gorm:"column:last_name"`
	Phone          string `gorm:"column:phone;not null"`
	StreetAddress  string `gorm:"column:street_address;not null"`
	StreetAddress2 string `gorm:"column:street_address2"`
	City           string `gorm:"column:city;not null"`
	County         string `gorm:"column:county"`
	Postcode       string `gorm:"column:postcode;not null"`
	Country        string `gorm:"column:country;not null;default:'United Kingdom'"`

	PlaceID          string `gorm:"column:place_id"`
	FormattedAddress string `gorm:"column:formatted_address"`

	IsDefault bool `gorm:"column:is_default;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
