package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rentkart/rentkart-backend/api/routes"
	"github.com/rentkart/rentkart-backend/internal/auth"
	cartsvc "github.com/rentkart/rentkart-backend/internal/cart"
	"github.com/rentkart/rentkart-backend/internal/coupons"
	"github.com/rentkart/rentkart-backend/internal/delivery"
	ordersvc "github.com/rentkart/rentkart-backend/internal/orders"
	"github.com/rentkart/rentkart-backend/internal/pricing"
	"github.com/rentkart/rentkart-backend/internal/products"
	quotationsvc "github.com/rentkart/rentkart-backend/internal/quotations"
	"github.com/rentkart/rentkart-backend/internal/vendors"
	payment "github.com/rentkart/rentkart-backend/internal/webhooks/payment"
	"github.com/rentkart/rentkart-backend/pkg/auth/session"
	"github.com/rentkart/rentkart-backend/pkg/config"
	"github.com/rentkart/rentkart-backend/pkg/db"
	"github.com/rentkart/rentkart-backend/pkg/geo"
	"github.com/rentkart/rentkart-backend/pkg/logger"
	"github.com/rentkart/rentkart-backend/pkg/mail"
	"github.com/rentkart/rentkart-backend/pkg/metrics"
	"github.com/rentkart/rentkart-backend/pkg/migrate"
	"github.com/rentkart/rentkart-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	geoClient := geo.NewClient(
		geo.WithGeocodeBaseURL(cfg.Geo.GeocodeBaseURL),
		geo.WithRoutingBaseURL(cfg.Geo.RoutingBaseURL),
		geo.WithHTTPClient(&http.Client{Timeout: cfg.Geo.Timeout}),
	)

	var mailer mail.Sender
	if mailClient, err := mail.NewClient(cfg.Sendgrid); err != nil {
		logg.Warn(context.Background(), "mail disabled: "+err.Error())
	} else {
		mailer = mailClient
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gdb := dbClient.DB()
	userRepo := auth.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	cartRepo := cartsvc.NewRepository(gdb)
	vendorRepo := vendors.NewRepository(gdb)
	couponRepo := coupons.NewRepository(gdb)
	quotationRepo := quotationsvc.NewRepository(gdb)
	orderRepo := ordersvc.NewRepository(gdb)

	blocklist, err := vendors.NewBlocklist(redisClient)
	exitOn(logg, "vendor blocklist", err)

	authService, err := auth.NewService(userRepo, vendorRepo, sessionManager, cfg.JWT, cfg.Password)
	exitOn(logg, "auth service", err)

	pricingService, err := pricing.NewService(pricing.NewRepository(gdb))
	exitOn(logg, "pricing service", err)

	cartService, err := cartsvc.NewService(cartRepo, productRepo, pricingService)
	exitOn(logg, "cart service", err)

	vendorService, err := vendors.NewService(vendorRepo, dbClient)
	exitOn(logg, "vendor service", err)

	productService, err := products.NewService(productRepo)
	exitOn(logg, "product service", err)

	couponService, err := coupons.NewService(couponRepo)
	exitOn(logg, "coupon service", err)

	deliveryCalculator, err := delivery.NewCalculator(vendorRepo, geoClient, geoClient, logg)
	exitOn(logg, "delivery calculator", err)

	quotationService, err := quotationsvc.NewService(quotationsvc.Deps{
		Repo:       quotationRepo,
		Carts:      cartRepo,
		Vendors:    vendorRepo,
		Users:      userRepo,
		Coupons:    couponService,
		Blocklist:  blocklist,
		Calculator: deliveryCalculator,
		Tx:         dbClient,
		Mailer:     mailer,
		Logger:     logg,
		Checkout:   checkoutMetrics,
	})
	exitOn(logg, "quotation service", err)

	orderService, err := ordersvc.NewService(ordersvc.Deps{
		Repo:       orderRepo,
		Quotations: quotationRepo,
		Coupons:    couponRepo,
		Tx:         dbClient,
		Logger:     logg,
		Checkout:   checkoutMetrics,
	})
	exitOn(logg, "order service", err)

	var paymentService payment.Service
	if cfg.Payment.WebhookSecret != "" {
		paymentService, err = payment.NewService(cfg.Payment, orderService, logg)
		exitOn(logg, "payment webhook service", err)
	} else {
		logg.Warn(context.Background(), "payment webhook secret not set, webhook endpoint disabled")
	}

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Auth:        authService,
		Cart:        cartService,
		Delivery:    deliveryCalculator,
		Products:    productService,
		Vendors:     vendorService,
		Blocklist:   blocklist,
		Coupons:     couponService,
		Quotations:  quotationService,
		Orders:      orderService,
		Payments:    paymentService,
		HTTPMetrics: httpMetrics,
		Registry:    registry,
	})

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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOn(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
