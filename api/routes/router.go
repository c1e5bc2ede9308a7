package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casspea/casspea-backend/api/controllers"
	webhookcontrollers "github.com/casspea/casspea-backend/api/controllers/webhooks"
	"github.com/casspea/casspea-backend/api/middleware"
	"github.com/casspea/casspea-backend/internal/address"
	"github.com/casspea/casspea-backend/internal/cart"
	checkoutsvc "github.com/casspea/casspea-backend/internal/checkout"
	"github.com/casspea/casspea-backend/internal/identity"
	"github.com/casspea/casspea-backend/internal/leads"
	"github.com/casspea/casspea-backend/internal/orders"
	"github.com/casspea/casspea-backend/internal/products"
	"github.com/casspea/casspea-backend/internal/shipping"
	stripewebhook "github.com/casspea/casspea-backend/internal/webhooks/stripe"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/redis"
	"github.com/casspea/casspea-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	resolver *identity.Resolver,
	productService products.Service,
	shippingRepo shipping.ShippingRepository,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	orderService orders.Service,
	addressService address.Service,
	leadService leads.Service,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
	stripeClient *stripe.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Frontend.BaseURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Stripe posts raw payloads here; no session resolution on this path.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(resolver, cfg.Session, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productID}", controllers.GetProduct(productService, logg))
		})
		r.Get("/flavours", controllers.ListFlavours(productService, logg))
		r.Get("/shipping/options", controllers.ListShippingOptions(shippingRepo, cfg.Shipping, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(cartService, logg))
			r.Patch("/", controllers.UpdateCart(cartService, logg))
			r.Post("/items", controllers.AddCartItem(cartService, logg))
			r.Patch("/items/{itemID}", controllers.UpdateCartItem(cartService, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(cartService, logg))
		})

		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", controllers.CreateCheckoutSession(checkoutService, logg))
			r.Get("/{sessionID}", controllers.GetCheckoutSession(checkoutService, logg))
			r.Put("/{sessionID}/shipping-option", controllers.SetCheckoutShippingOption(checkoutService, logg))
			r.Put("/{sessionID}/addresses", controllers.SetCheckoutAddresses(checkoutService, logg))
			r.Post("/{sessionID}/payment-session", controllers.CreatePaymentSession(checkoutService, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Post("/", controllers.CreateAddress(addressService, logg))
			r.Get("/", controllers.ListAddresses(addressService, logg))
			r.Get("/{addressID}", controllers.GetAddress(addressService, logg))
			r.Post("/{addressID}/default", controllers.SetDefaultAddress(addressService, logg))
			r.Delete("/{addressID}", controllers.DeleteAddress(addressService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/number/{orderNumber}", controllers.GetOrderByNumber(orderService, logg))
			r.With(middleware.RequireUser(logg)).Get("/", controllers.ListMyOrders(orderService, logg))
		})

		r.Post("/newsletter/subscribe", controllers.SubscribeNewsletter(leadService, logg))
		r.Post("/contact", controllers.SubmitContactForm(leadService, logg))
	})

	return r
}
