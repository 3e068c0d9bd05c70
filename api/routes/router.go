package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rentkart/rentkart-backend/api/controllers"
	admincontrollers "github.com/rentkart/rentkart-backend/api/controllers/admin"
	cartcontrollers "github.com/rentkart/rentkart-backend/api/controllers/cart"
	ordercontrollers "github.com/rentkart/rentkart-backend/api/controllers/orders"
	quotationcontrollers "github.com/rentkart/rentkart-backend/api/controllers/quotations"
	webhookcontrollers "github.com/rentkart/rentkart-backend/api/controllers/webhooks"
	"github.com/rentkart/rentkart-backend/api/middleware"
	"github.com/rentkart/rentkart-backend/internal/auth"
	cartsvc "github.com/rentkart/rentkart-backend/internal/cart"
	"github.com/rentkart/rentkart-backend/internal/coupons"
	"github.com/rentkart/rentkart-backend/internal/delivery"
	ordersvc "github.com/rentkart/rentkart-backend/internal/orders"
	"github.com/rentkart/rentkart-backend/internal/products"
	quotationsvc "github.com/rentkart/rentkart-backend/internal/quotations"
	"github.com/rentkart/rentkart-backend/internal/vendors"
	payment "github.com/rentkart/rentkart-backend/internal/webhooks/payment"
	"github.com/rentkart/rentkart-backend/pkg/auth/session"
	"github.com/rentkart/rentkart-backend/pkg/config"
	"github.com/rentkart/rentkart-backend/pkg/enums"
	"github.com/rentkart/rentkart-backend/pkg/logger"
	"github.com/rentkart/rentkart-backend/pkg/metrics"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Sessions session.AccessSessionChecker

	Auth       auth.Service
	Cart       cartsvc.Service
	Delivery   delivery.Calculator
	Products   products.Service
	Vendors    vendors.Service
	Blocklist  vendors.Blocklist
	Coupons    coupons.Service
	Quotations quotationsvc.Service
	Orders     ordersvc.Service
	Payments   payment.Service

	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ProductBrowse(d.Products, logg))
			r.Get("/{productId}", controllers.ProductDetail(d.Products, logg))
		})
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.PaymentWebhook(d.Payments, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(d.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(d.Cart, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(d.Cart, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(d.Cart, logg))
			r.Post("/delivery-charges", cartcontrollers.CartDeliveryQuote(d.Cart, d.Delivery, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", quotationcontrollers.CustomerSubmit(d.Quotations, logg))
			r.Get("/", quotationcontrollers.CustomerList(d.Quotations, logg))
			r.Get("/{quotationId}", quotationcontrollers.CustomerDetail(d.Quotations, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.CustomerList(d.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.CustomerDetail(d.Orders, logg))
		})

		// Vendor onboarding only needs an authenticated user; the rest of
		// the vendor surface requires a bound vendor profile.
		r.Post("/vendor/register", controllers.VendorRegister(d.Vendors, logg))
		r.Get("/vendor/me", controllers.VendorProfile(d.Vendors, logg))

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireVendor(logg))

			r.Put("/delivery-config", controllers.VendorConfigureDelivery(d.Vendors, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.VendorListProducts(d.Products, logg))
				r.Post("/", controllers.VendorCreateProduct(d.Products, logg))
				r.Patch("/{productId}", controllers.VendorUpdateProduct(d.Products, logg))
				r.Delete("/{productId}", controllers.VendorDeleteProduct(d.Products, logg))
				r.Post("/{productId}/variants", controllers.VendorAddVariant(d.Products, logg))
			})
			r.Put("/variants/{variantId}/rental-price", controllers.VendorSetRentalPrice(d.Products, logg))

			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", quotationcontrollers.VendorList(d.Quotations, logg))
				r.Get("/{quotationId}", quotationcontrollers.VendorDetail(d.Quotations, logg))
				r.Post("/{quotationId}/send", quotationcontrollers.VendorSend(d.Quotations, logg))
				r.Post("/{quotationId}/cancel", quotationcontrollers.VendorCancel(d.Quotations, logg))
				r.Post("/{quotationId}/confirm", quotationcontrollers.VendorConfirm(d.Quotations, d.Orders, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.VendorList(d.Orders, logg))
				r.Post("/{orderId}/activate", ordercontrollers.VendorActivate(d.Orders, logg))
				r.Post("/{orderId}/complete", ordercontrollers.VendorComplete(d.Orders, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.VendorCancel(d.Orders, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", admincontrollers.CouponList(d.Coupons, logg))
			r.Post("/", admincontrollers.CouponCreate(d.Coupons, logg))
			r.Patch("/{couponId}", admincontrollers.CouponUpdate(d.Coupons, logg))
			r.Delete("/{couponId}", admincontrollers.CouponDelete(d.Coupons, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", admincontrollers.VendorList(d.Vendors, logg))
			r.Get("/blocked", admincontrollers.VendorListBlocked(d.Blocklist, logg))
			r.Post("/{vendorId}/block", admincontrollers.VendorBlock(d.Blocklist, logg))
			r.Post("/{vendorId}/unblock", admincontrollers.VendorUnblock(d.Blocklist, logg))
		})

		r.Route("/rental-periods", func(r chi.Router) {
			r.Get("/", admincontrollers.PeriodList(d.Products, logg))
			r.Post("/", admincontrollers.PeriodCreate(d.Products, logg))
		})

		r.Get("/orders", ordercontrollers.AdminList(d.Orders, logg))
	})

	return r
}
