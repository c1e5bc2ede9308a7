package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/casspea/casspea-backend/api/responses"
	"github.com/casspea/casspea-backend/api/validators"
	"github.com/casspea/casspea-backend/internal/address"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/logger"
)

type createAddressRequest struct {
	AddressType    string `json:"address_type" validate:"required"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	StreetAddress  string `json:"street_address" validate:"required"`
	StreetAddress2 string `json:"street_address2"`
	City           string `json:"city" validate:"required"`
	County         string `json:"county"`
	Postcode       string `json:"postcode" validate:"required"`
	Country        string `json:"country"`
	IsDefault      bool   `json:"is_default"`
}

type addressView struct {
	ID             uuid.UUID `json:"id"`
	AddressType    string    `json:"address_type"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Phone          string    `json:"phone"`
	StreetAddress  string    `json:"street_address"`
	StreetAddress2 string    `json:"street_address2,omitempty"`
	City           string    `json:"city"`
	County         string    `json:"county,omitempty"`
	Postcode       string    `json:"postcode"`
	Country        string    `json:"country"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
}

func newAddressView(record *models.Address) addressView {
	return addressView{
		ID:             record.ID,
		AddressType:    record.AddressType.String(),
		FirstName:      record.FirstName,
		LastName:       record.LastName,
		Phone:          record.Phone,
		StreetAddress:  record.StreetAddress,
		StreetAddress2: record.StreetAddress2,
		City:           record.City,
		County:         record.County,
		Postcode:       record.Postcode,
		Country:        record.Country,
		IsDefault:      record.IsDefault,
		CreatedAt:      record.CreatedAt,
	}
}

// CreateAddress stores a shipping or billing address for the caller.
func CreateAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		var body createAddressRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addressType, err := enums.ParseAddressType(body.AddressType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address type"))
			return
		}

		record, err := svc.Create(r.Context(), owner, address.CreateInput{
			AddressType:    addressType,
			FirstName:      body.FirstName,
			LastName:       body.LastName,
			Phone:          body.Phone,
			StreetAddress:  body.StreetAddress,
			StreetAddress2: body.StreetAddress2,
			City:           body.City,
			County:         body.County,
			Postcode:       body.Postcode,
			Country:        body.Country,
			IsDefault:      body.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAddressView(record))
	}
}

// ListAddresses returns every address belonging to the caller.
func ListAddresses(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		records, err := svc.List(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]addressView, 0, len(records))
		for i := range records {
			views = append(views, newAddressView(&records[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetAddress returns one of the caller's addresses.
func GetAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		addressID, err := validators.ParseUUIDParam(r, "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), owner, addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAddressView(record))
	}
}

// SetDefaultAddress marks an address as the default for its type.
func SetDefaultAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		addressID, err := validators.ParseUUIDParam(r, "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.SetDefault(r.Context(), owner, addressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAddressView(record))
	}
}

// DeleteAddress removes one of the caller's addresses.
func DeleteAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFromRequest(r, logg, w)
		if !ok {
			return
		}

		addressID, err := validators.ParseUUIDParam(r, "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), owner, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
