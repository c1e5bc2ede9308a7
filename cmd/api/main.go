package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/casspea/casspea-backend/api/routes"
	"github.com/casspea/casspea-backend/internal/address"
	"github.com/casspea/casspea-backend/internal/cart"
	"github.com/casspea/casspea-backend/internal/checkout"
	"github.com/casspea/casspea-backend/internal/discounts"
	"github.com/casspea/casspea-backend/internal/identity"
	"github.com/casspea/casspea-backend/internal/leads"
	"github.com/casspea/casspea-backend/internal/mails"
	"github.com/casspea/casspea-backend/internal/orders"
	"github.com/casspea/casspea-backend/internal/products"
	"github.com/casspea/casspea-backend/internal/shipping"
	stripewebhook "github.com/casspea/casspea-backend/internal/webhooks/stripe"
	"github.com/casspea/casspea-backend/pkg/config"
	"github.com/casspea/casspea-backend/pkg/db"
	"github.com/casspea/casspea-backend/pkg/logger"
	"github.com/casspea/casspea-backend/pkg/metrics"
	"github.com/casspea/casspea-backend/pkg/migrate"
	"github.com/casspea/casspea-backend/pkg/redis"
	"github.com/casspea/casspea-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)

	resolver, err := identity.NewResolver(cfg.JWT, cfg.Session, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity resolver", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	productRepo := products.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	checkoutRepo := checkout.NewRepository(gormDB)
	shippingRepo := shipping.NewRepository(gormDB)
	discountRepo := discounts.NewRepository(gormDB)
	addressRepo := address.NewRepository(gormDB)

	orderRepo, err := orders.NewRepository(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create order repository", err)
		os.Exit(1)
	}
	emailRepo, err := mails.NewRepository(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create email repository", err)
		os.Exit(1)
	}
	leadRepo, err := leads.NewRepository(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create lead repository", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, dbClient, productService, productRepo, discountRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		checkoutRepo,
		cartRepo,
		shippingRepo,
		dbClient,
		checkout.NewPaymentSessionClient(stripeClient),
		cfg.Shipping,
		cfg.Stripe,
		cfg.Frontend,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	addressService, err := address.NewService(addressRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	var sender mails.Sender
	if cfg.App.IsDev() {
		sender = mails.NewLogSender(logg)
	} else {
		sender, err = mails.NewSMTPSender(cfg.Mail)
		if err != nil {
			logg.Error(context.Background(), "failed to create smtp sender", err)
			os.Exit(1)
		}
	}

	mailService, err := mails.NewService(emailRepo, sender, logg, webhookMetrics, cfg.Frontend)
	if err != nil {
		logg.Error(context.Background(), "failed to create mail service", err)
		os.Exit(1)
	}

	leadService, err := leads.NewService(leadRepo, mailService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create lead service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Checkout: checkoutService,
		Orders:   orderService,
		Carts:    cartRepo,
		Mailer:   mailService,
		Logger:   logg,
		Metrics:  webhookMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, 24*time.Hour, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			resolver,
			productService,
			shippingRepo,
			cartService,
			checkoutService,
			orderService,
			addressService,
			leadService,
			webhookService,
			webhookGuard,
			stripeClient,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
