package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
)

// Service exposes catalogue reads with coded errors.
type Service interface {
	GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context) ([]models.Product, error)
	ListActiveFlavours(ctx context.Context) ([]models.Flavour, error)
}

type service struct {
	repo ProductRepository
}

// NewService builds a product service backed by the provided repository.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// GetPurchasable loads a product and verifies it can still be bought.
func (s *service) GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if product.SoldOut {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is sold out")
	}
	return product, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) ListActiveFlavours(ctx context.Context) ([]models.Flavour, error) {
	rows, err := s.repo.ListActiveFlavours(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list flavours")
	}
	return rows, nil
}
