package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/internal/discounts"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type flavourLoader interface {
	ListFlavoursByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Flavour, error)
	ListAllergensByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Allergen, error)
}

type discountLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Discount, error)
}

// Service exposes cart operations scoped to an owner key.
type Service interface {
	GetOrCreateActiveCart(ctx context.Context, owner types.OwnerKey) (*models.Cart, bool, error)
	UpdateCart(ctx context.Context, owner types.OwnerKey, input UpdateCartInput) (*models.Cart, error)
	AddItem(ctx context.Context, owner types.OwnerKey, input AddItemInput) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, owner types.OwnerKey, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner types.OwnerKey, itemID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo           CartRepository
	tx             txRunner
	productLoader  productLoader
	flavourLoader  flavourLoader
	discountLookup discountLookup
	now            func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, flavours flavourLoader, discountRepo discountLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if flavours == nil {
		return nil, fmt.Errorf("flavour loader required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount lookup required")
	}
	return &service{
		repo:           repo,
		tx:             tx,
		productLoader:  products,
		flavourLoader:  flavours,
		discountLookup: discountRepo,
		now:            time.Now,
	}, nil
}

// UpdateCartInput carries a partial cart update. Nil fields are left
// untouched; removing a discount requires the explicit flag or an empty code.
type UpdateCartInput struct {
	GiftMessage    *string
	ShippingDate   *time.Time
	DiscountCode   *string
	RemoveDiscount bool
}

// AddItemInput captures the payload for a new cart line.
type AddItemInput struct {
	ProductID        uuid.UUID
	Quantity         int
	SelectionType    *enums.SelectionType
	FlavorSelections []FlavorSelectionInput
	AllergenIDs      []uuid.UUID
}

// FlavorSelectionInput is one chosen flavor and its count.
type FlavorSelectionInput struct {
	FlavorID uuid.UUID
	Quantity int
}

// GetOrCreateActiveCart returns the owner's active cart, creating one when
// none exists. The check-then-create runs in one transaction holding a row
// lock on the owner's cart rows so racing first-touch requests cannot create
// duplicate active carts.
func (s *service) GetOrCreateActiveCart(ctx context.Context, owner types.OwnerKey) (*models.Cart, bool, error) {
	if err := owner.Validate(); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}

	var (
		record  *models.Cart
		created bool
	)
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		found, err := txRepo.FindActiveForOwner(ctx, owner, true)
		if err == nil {
			record = found
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		record, err = txRepo.Create(ctx, &models.Cart{
			UserID:    owner.UserID,
			SessionID: owner.SessionID,
		})
		if err != nil {
			return err
		}
		created = true
		return nil
	}); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve active cart")
	}

	return record, created, nil
}

// UpdateCart applies a partial update to the owner's active cart.
func (s *service) UpdateCart(ctx context.Context, owner types.OwnerKey, input UpdateCartInput) (*models.Cart, error) {
	record, _, err := s.GetOrCreateActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	if input.ShippingDate != nil {
		today := s.now().Truncate(24 * time.Hour)
		if input.ShippingDate.Before(today) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping date cannot be in the past")
		}
		record.ShippingDate = input.ShippingDate
	}
	if input.GiftMessage != nil {
		record.GiftMessage = input.GiftMessage
	}

	switch {
	case input.RemoveDiscount, input.DiscountCode != nil && discounts.NormalizeCode(*input.DiscountCode) == "":
		record.DiscountID = nil
		record.Discount = nil
	case input.DiscountCode != nil:
		discount, err := s.resolveDiscount(ctx, *input.DiscountCode, record.Items)
		if err != nil {
			return nil, err
		}
		// applying replaces any previously attached code
		record.DiscountID = &discount.ID
		record.Discount = discount
	}

	if _, err := s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return s.reload(ctx, owner, record.ID)
}

func (s *service) resolveDiscount(ctx context.Context, code string, items []models.CartItem) (*models.Discount, error) {
	discount, err := s.discountLookup.FindByCode(ctx, discounts.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code is invalid or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount")
	}
	if _, err := discounts.Evaluate(discount, items, s.now()); err != nil {
		return nil, err
	}
	return discount, nil
}

// AddItem validates and atomically persists a new cart line with its box
// customization graph, then returns the re-priced cart.
func (s *service) AddItem(ctx context.Context, owner types.OwnerKey, input AddItemInput) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.productLoader.GetPurchasable(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	box, err := s.buildBoxCustomization(ctx, input, product)
	if err != nil {
		return nil, err
	}

	var cartID uuid.UUID
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		record, err := txRepo.FindActiveForOwner(ctx, owner, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record, err = txRepo.Create(ctx, &models.Cart{
				UserID:    owner.UserID,
				SessionID: owner.SessionID,
			})
		}
		if err != nil {
			return err
		}
		cartID = record.ID

		item := &models.CartItem{
			CartID:           record.ID,
			ProductID:        product.ID,
			Quantity:         input.Quantity,
			BoxCustomization: box,
		}
		_, err = txRepo.CreateItem(ctx, item)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}

	return s.reload(ctx, owner, cartID)
}

func (s *service) buildBoxCustomization(ctx context.Context, input AddItemInput, product *models.Product) (*models.CartItemBoxCustomization, error) {
	if input.SelectionType == nil {
		if len(input.FlavorSelections) > 0 || len(input.AllergenIDs) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "selection type is required for box customization")
		}
		return nil, nil
	}

	box := &models.CartItemBoxCustomization{SelectionType: *input.SelectionType}
	for _, selection := range input.FlavorSelections {
		box.FlavorSelections = append(box.FlavorSelections, models.CartItemBoxFlavorSelection{
			FlavorID: selection.FlavorID,
			Quantity: selection.Quantity,
		})
	}
	if err := validateBoxCustomization(box, product); err != nil {
		return nil, err
	}

	if len(input.FlavorSelections) > 0 {
		ids := make([]uuid.UUID, 0, len(input.FlavorSelections))
		for _, selection := range input.FlavorSelections {
			ids = append(ids, selection.FlavorID)
		}
		flavours, err := s.flavourLoader.ListFlavoursByIDs(ctx, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load flavours")
		}
		known := map[uuid.UUID]struct{}{}
		for _, flavour := range flavours {
			known[flavour.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "flavour not found")
			}
		}
	}

	if len(input.AllergenIDs) > 0 {
		allergens, err := s.flavourLoader.ListAllergensByIDs(ctx, input.AllergenIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load allergens")
		}
		if len(allergens) != len(input.AllergenIDs) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "allergen not found")
		}
		box.Allergens = allergens
	}

	return box, nil
}

// UpdateItemQuantity changes the quantity of an item in the owner's cart.
func (s *service) UpdateItemQuantity(ctx context.Context, owner types.OwnerKey, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	record, err := s.requireActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindItem(ctx, record.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.reload(ctx, owner, record.ID)
}

// RemoveItem deletes an item from the owner's cart.
func (s *service) RemoveItem(ctx context.Context, owner types.OwnerKey, itemID uuid.UUID) (*models.Cart, error) {
	record, err := s.requireActiveCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindItem(ctx, record.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.DeleteItem(ctx, record.ID, itemID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.reload(ctx, owner, record.ID)
}

func (s *service) requireActiveCart(ctx context.Context, owner types.OwnerKey) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid owner")
	}
	record, err := s.repo.FindActiveForOwner(ctx, owner, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active cart")
	}
	return record, nil
}

func (s *service) reload(ctx context.Context, owner types.OwnerKey, cartID uuid.UUID) (*models.Cart, error) {
	record, err := s.repo.FindByIDForOwner(ctx, cartID, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return record, nil
}
