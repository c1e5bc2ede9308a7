package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casspea/casspea-backend/internal/address"
	"github.com/casspea/casspea-backend/internal/cart"
	"github.com/casspea/casspea-backend/internal/checkout"
	"github.com/casspea/casspea-backend/internal/identity"
	"github.com/casspea/casspea-backend/internal/leads"
	"github.com/casspea/casspea-backend/internal/shipping"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db/models"
	"github.com/casspea/casspea-backend/pkg/enums"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{data: make(map[string]string)}
}

func (s *stubSessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = "1"
	return nil
}

func (s *stubSessionStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *stubSessionStore) SessionKey(id string) string {
	return "cp:session:" + id
}

type stubProductService struct{}

func (stubProductService) GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) ListActive(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

func (stubProductService) ListActiveFlavours(ctx context.Context) ([]models.Flavour, error) {
	return nil, nil
}

type stubShippingRepo struct{}

func (s stubShippingRepo) WithTx(tx *gorm.DB) shipping.ShippingRepository {
	return s
}

func (stubShippingRepo) FindOptionByID(ctx context.Context, id uuid.UUID) (*models.ShippingOption, error) {
	panic("unimplemented")
}

func (stubShippingRepo) ListActiveOptions(ctx context.Context) ([]models.ShippingOption, error) {
	return nil, nil
}

type stubCartService struct{}

func (stubCartService) GetOrCreateActiveCart(ctx context.Context, owner types.OwnerKey) (*models.Cart, bool, error) {
	return &models.Cart{ID: uuid.New(), Active: true}, false, nil
}

func (stubCartService) UpdateCart(ctx context.Context, owner types.OwnerKey, input cart.UpdateCartInput) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) AddItem(ctx context.Context, owner types.OwnerKey, input cart.AddItemInput) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItemQuantity(ctx context.Context, owner types.OwnerKey, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, owner types.OwnerKey, itemID uuid.UUID) (*models.Cart, error) {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) GetOrCreate(ctx context.Context, owner types.OwnerKey, input checkout.CreateInput) (*models.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubCheckoutService) SetShippingOption(ctx context.Context, owner types.OwnerKey, sessionID, optionID uuid.UUID) (*models.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubCheckoutService) SetAddresses(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID, shippingAddressID, billingAddressID *uuid.UUID) (*models.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubCheckoutService) Quote(ctx context.Context, record *models.CheckoutSession) (checkout.Quote, error) {
	panic("unimplemented")
}

func (stubCheckoutService) CreatePaymentSession(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*checkout.PaymentSessionResult, error) {
	panic("unimplemented")
}

func (stubCheckoutService) MarkPaid(ctx context.Context, sessionID uuid.UUID, paymentRef string) (*models.CheckoutSession, bool, error) {
	panic("unimplemented")
}

func (stubCheckoutService) MarkFailed(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error) {
	panic("unimplemented")
}

func (stubCheckoutService) MarkCancelled(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, bool, error) {
	panic("unimplemented")
}

func (stubCheckoutService) FindByID(ctx context.Context, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	panic("unimplemented")
}

func (stubCheckoutService) FindOwned(ctx context.Context, owner types.OwnerKey, sessionID uuid.UUID) (*models.CheckoutSession, error) {
	panic("unimplemented")
}

type stubOrderService struct{}

func (stubOrderService) CreateFromCheckoutSession(ctx context.Context, session *models.CheckoutSession) (*models.Order, bool, error) {
	panic("unimplemented")
}

func (stubOrderService) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, note string) (*models.Order, error) {
	panic("unimplemented")
}

type stubAddressService struct{}

func (stubAddressService) Create(ctx context.Context, owner types.OwnerKey, input address.CreateInput) (*models.Address, error) {
	panic("unimplemented")
}

func (stubAddressService) List(ctx context.Context, owner types.OwnerKey) ([]models.Address, error) {
	return nil, nil
}

func (stubAddressService) Get(ctx context.Context, owner types.OwnerKey, id uuid.UUID) (*models.Address, error) {
	panic("unimplemented")
}

func (stubAddressService) SetDefault(ctx context.Context, owner types.OwnerKey, id uuid.UUID) (*models.Address, error) {
	panic("unimplemented")
}

func (stubAddressService) Delete(ctx context.Context, owner types.OwnerKey, id uuid.UUID) error {
	panic("unimplemented")
}

type stubLeadService struct{}

func (stubLeadService) Subscribe(ctx context.Context, email string, name *string) (*models.Lead, error) {
	return &models.Lead{ID: uuid.New(), Type: enums.LeadTypeNewsletter, Email: email}, nil
}

func (stubLeadService) SubmitContact(ctx context.Context, input leads.ContactInput) (*models.Lead, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
		Session: config.SessionConfig{
			CookieName: "casspea_session",
			TTL:        336 * time.Hour,
		},
		Shipping: config.ShippingConfig{Currency: "GBP", FreeShippingThreshold: "45"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	resolver, err := identity.NewResolver(cfg.JWT, cfg.Session, newStubSessionStore())
	if err != nil {
		t.Fatalf("resolver setup: %v", err)
	}
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		resolver,
		stubProductService{},
		stubShippingRepo{},
		stubCartService{},
		stubCheckoutService{},
		stubOrderService{},
		stubAddressService{},
		stubLeadService{},
		nil, // webhook service unused by these routes
		nil, // webhook guard
		nil, // stripe client
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestGuestSessionIssuedOnFirstRequest(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if resp.Header().Get("X-Session-Id") == "" {
		t.Fatalf("expected a minted session id header")
	}
	cookies := resp.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "casspea_session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected session cookie to be set, got %v", cookies)
	}
}

func TestOrdersListRequiresUser(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest got %d", resp.Code)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsigned payload got %d", resp.Code)
	}
}

func TestNewsletterSubscribe(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/newsletter/subscribe", strings.NewReader(`{"email":"hello@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
}
