package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes address management scoped to an owner.
type Service interface {
	Create(ctx context.Context, owner types.OwnerKey, input CreateInput) (*models.Address, error)
	List(ctx context.Context, owner types.OwnerKey) ([]models.Address, error)
	Get(ctx context.Context, owner types.OwnerKey, id uuid.UUID) (*models.Address, error)
	SetDefault(ctx context.Context, owner types.OwnerKey, id uuid.UUID) (*models.Address, error)
	Delete(ctx context.Context, owner types.OwnerKey, id uuid.UUID) error
}

type service struct {
	repo AddressRepository
	tx   txRunner
}

// NewService builds an address service backed by the provided stack.
func NewService(repo AddressRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateInput captures the payload for a new address.
type CreateInput struct {
	AddressType    enums.AddressType
	FirstName      string
	LastName       string
	Phone          string
	StreetAddress  string
	StreetAddress2 string
	City           string
	County         string
	Postcode       string
	Country        string
	IsDefault      bool
}

// Create validates and persists an address. Marking it default unsets the
// owner's previous default of the same type in the same transaction, an
// explicit operation rather than a save hook.
func (s *service) Create(ctx context.Context, owner types.OwnerKey, input CreateInput) (*models.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}
	if !input.AddressType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
	}
	for field, value := range map[string]string{
		"phone":          input.Phone,
		"street_address": input.StreetAddress,
		"city":           input.City,
		"postcode":       input.Postcode,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
		}
	}

	record := &models.Address{
		UserID:         owner.UserID,
		SessionID:      owner.SessionID,
		AddressType:    input.AddressType,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          strings.TrimSpace(input.Phone),
		StreetAddress:  strings.TrimSpace(input.StreetAddress),
		StreetAddress2: strings.TrimSpace(input.StreetAddress2),
		City:           strings.TrimSpace(input.City),
		County:         strings.TrimSpace(input.County),
		Postcode:       strings.TrimSpace(input.Postcode),
		Country:        strings.TrimSpace(input.Country),
		IsDefault:      input.IsDefault,
	}
	if record.Country == "" {
		record.Country = "United Kingdom"
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		if created.IsDefault {
			return txRepo.ClearDefaults(ctx, owner, created.AddressType, created.ID)
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist address")
	}

	return record, nil
}

func (s *service) List(ctx context.Context, owner types.OwnerKey) ([]models.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}
	rows, err := s.repo.ListForOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, owner types.OwnerKey, id uuid.UUID) (*models.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}
	record, err := s.repo.FindByIDForOwner(ctx, id, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return record, nil
}

// SetDefault promotes an address to the owner's default for its type.
func (s *service) SetDefault(ctx context.Context, owner types.OwnerKey, id uuid.UUID) (*models.Address, error) {
	record, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record.IsDefault = true
		if _, err := txRepo.Update(ctx, record); err != nil {
			return err
		}
		return txRepo.ClearDefaults(ctx, owner, record.AddressType, record.ID)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update default address")
	}

	return record, nil
}

func (s *service) Delete(ctx context.Context, owner types.OwnerKey, id uuid.UUID) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}
