package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	pkgerrors "github.com/casspea/casspea-backend/pkg/errors"
	"github.com/casspea/casspea-backend/pkg/types"
)

func sessionOwner() types.OwnerKey {
	return types.SessionOwner("sess-test")
}

func testProduct(unitsPerBox int) *models.Product {
	return &models.Product{
		ID:          uuid.New(),
		Name:        "Signature Box",
		BasePrice:   decimal.RequireFromString("29.95"),
		UnitsPerBox: unitsPerBox,
		Active:      true,
	}
}

func newTestService(repo CartRepository, product *models.Product, discount *models.Discount) Service {
	svc, err := NewService(repo, stubTxRunner{}, stubProductLoader{product: product}, stubFlavourLoader{}, stubDiscountLookup{discount: discount})
	if err != nil {
		panic(err)
	}
	return svc
}

func TestGetOrCreateActiveCartCreatesOnce(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	svc := newTestService(repo, nil, nil)

	record, created, err := svc.GetOrCreateActiveCart(context.Background(), sessionOwner())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected cart to be created")
	}

	again, created, err := svc.GetOrCreateActiveCart(context.Background(), sessionOwner())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("expected existing cart to be reused")
	}
	if again.ID != record.ID {
		t.Fatal("expected same cart")
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected 1 create, got %d", repo.createCalls)
	}
}

func TestGetOrCreateActiveCartRejectsZeroOwner(t *testing.T) {
	t.Parallel()

	svc := newTestService(newStubCartRepo(), nil, nil)
	_, _, err := svc.GetOrCreateActiveCart(context.Background(), types.OwnerKey{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddItemValidatesQuantity(t *testing.T) {
	t.Parallel()

	svc := newTestService(newStubCartRepo(), testProduct(12), nil)
	_, err := svc.AddItem(context.Background(), sessionOwner(), AddItemInput{ProductID: uuid.New(), Quantity: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddItemPickAndMixMustFillBox(t *testing.T) {
	t.Parallel()

	product := testProduct(12)
	svc := newTestService(newStubCartRepo(), product, nil)
	selection := enums.SelectionTypePickAndMix

	_, err := svc.AddItem(context.Background(), sessionOwner(), AddItemInput{
		ProductID:     product.ID,
		Quantity:      1,
		SelectionType: &selection,
		FlavorSelections: []FlavorSelectionInput{
			{FlavorID: uuid.New(), Quantity: 6},
			{FlavorID: uuid.New(), Quantity: 5},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %T", typed.Details())
	}
	if details["expected_total"] != 12 || details["actual_total"] != 11 {
		t.Fatalf("unexpected details: %v", details)
	}
}

func TestAddItemPickAndMixExactFillSucceeds(t *testing.T) {
	t.Parallel()

	product := testProduct(12)
	repo := newStubCartRepo()
	svc := newTestService(repo, product, nil)
	selection := enums.SelectionTypePickAndMix

	_, err := svc.AddItem(context.Background(), sessionOwner(), AddItemInput{
		ProductID:     product.ID,
		Quantity:      1,
		SelectionType: &selection,
		FlavorSelections: []FlavorSelectionInput{
			{FlavorID: uuid.New(), Quantity: 6},
			{FlavorID: uuid.New(), Quantity: 6},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected one item, got %d", len(repo.items))
	}
}

func TestAddItemRandomRejectsSelections(t *testing.T) {
	t.Parallel()

	product := testProduct(12)
	svc := newTestService(newStubCartRepo(), product, nil)
	selection := enums.SelectionTypeRandom

	_, err := svc.AddItem(context.Background(), sessionOwner(), AddItemInput{
		ProductID:        product.ID,
		Quantity:         1,
		SelectionType:    &selection,
		FlavorSelections: []FlavorSelectionInput{{FlavorID: uuid.New(), Quantity: 12}},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateItemQuantityUnknownItem(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	repo.seedCart(sessionOwner())
	svc := newTestService(repo, nil, nil)

	_, err := svc.UpdateItemQuantity(context.Background(), sessionOwner(), uuid.New(), 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateCartAppliesAndRemovesDiscount(t *testing.T) {
	t.Parallel()

	discount := &models.Discount{
		ID:           uuid.New(),
		Code:         "SAVE10",
		DiscountType: enums.DiscountTypePercentage,
		Amount:       decimal.RequireFromString("10"),
		Active:       true,
	}
	repo := newStubCartRepo()
	repo.seedCart(sessionOwner())
	svc := newTestService(repo, nil, discount)

	code := "save10"
	record, err := svc.UpdateCart(context.Background(), sessionOwner(), UpdateCartInput{DiscountCode: &code})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.DiscountID == nil || *record.DiscountID != discount.ID {
		t.Fatal("expected discount to be applied")
	}

	// absent fields leave the discount untouched
	record, err = svc.UpdateCart(context.Background(), sessionOwner(), UpdateCartInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.DiscountID == nil {
		t.Fatal("expected discount to survive a no-op update")
	}

	record, err = svc.UpdateCart(context.Background(), sessionOwner(), UpdateCartInput{RemoveDiscount: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.DiscountID != nil {
		t.Fatal("expected discount to be removed")
	}
}

func TestUpdateCartBelowMinimumKeepsExistingDiscount(t *testing.T) {
	t.Parallel()

	discount := &models.Discount{
		ID:            uuid.New(),
		Code:          "BIG50",
		DiscountType:  enums.DiscountTypePercentage,
		Amount:        decimal.RequireFromString("50"),
		MinOrderValue: decimal.RequireFromString("50"),
		Active:        true,
	}
	repo := newStubCartRepo()
	record := repo.seedCart(sessionOwner())
	record.Items = []models.CartItem{lineItem("40.00", 1)}

	svc := newTestService(repo, nil, discount)

	code := "BIG50"
	_, err := svc.UpdateCart(context.Background(), sessionOwner(), UpdateCartInput{DiscountCode: &code})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.DiscountID != nil {
		t.Fatal("failed application must leave cart discount unchanged")
	}
}

func TestUpdateCartRejectsPastShippingDate(t *testing.T) {
	t.Parallel()

	repo := newStubCartRepo()
	repo.seedCart(sessionOwner())
	svc := newTestService(repo, nil, nil)

	past := time.Now().Add(-48 * time.Hour)
	_, err := svc.UpdateCart(context.Background(), sessionOwner(), UpdateCartInput{ShippingDate: &past})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

type stubCartRepo struct {
	carts       map[uuid.UUID]*models.Cart
	items       map[uuid.UUID]*models.CartItem
	createCalls int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		carts: map[uuid.UUID]*models.Cart{},
		items: map[uuid.UUID]*models.CartItem{},
	}
}

func (s *stubCartRepo) seedCart(owner types.OwnerKey) *models.Cart {
	record := &models.Cart{ID: uuid.New(), UserID: owner.UserID, SessionID: owner.SessionID, Active: true}
	s.carts[record.ID] = record
	return record
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindActiveForOwner(ctx context.Context, owner types.OwnerKey, lock bool) (*models.Cart, error) {
	for _, record := range s.carts {
		if !record.Active {
			continue
		}
		if owner.IsUser() && record.UserID != nil && *record.UserID == *owner.UserID {
			return record, nil
		}
		if !owner.IsUser() && record.UserID == nil && record.SessionID != nil && *record.SessionID == *owner.SessionID {
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) FindByIDForOwner(ctx context.Context, id uuid.UUID, owner types.OwnerKey) (*models.Cart, error) {
	if record, ok := s.carts[id]; ok {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Active = true
	s.carts[record.ID] = record
	s.createCalls++
	return record, nil
}

func (s *stubCartRepo) Update(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	s.carts[record.ID] = record
	return record, nil
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	if record, ok := s.carts[item.CartID]; ok {
		record.Items = append(record.Items, *item)
	}
	return item, nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	if item, ok := s.items[itemID]; ok && item.CartID == cartID {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if item, ok := s.items[itemID]; ok {
		item.Quantity = quantity
	}
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) Deactivate(ctx context.Context, cartID uuid.UUID) error {
	if record, ok := s.carts[cartID]; ok {
		record.Active = false
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	product *models.Product
}

func (s stubProductLoader) GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, nil
}

type stubFlavourLoader struct{}

func (stubFlavourLoader) ListFlavoursByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Flavour, error) {
	rows := make([]models.Flavour, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Flavour{ID: id})
	}
	return rows, nil
}

func (stubFlavourLoader) ListAllergensByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Allergen, error) {
	rows := make([]models.Allergen, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Allergen{ID: id})
	}
	return rows, nil
}

type stubDiscountLookup struct {
	discount *models.Discount
}

func (s stubDiscountLookup) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	if s.discount == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.discount, nil
}
