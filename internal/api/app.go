package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/middleware"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/pkg/config"
)

// maxWebhookBytes caps the raw webhook body read for signature checks
const maxWebhookBytes = 64 << 10

// App holds application dependencies
type App struct {
	config           *config.Config
	metrics          *metrics.AppMetrics
	productService   *services.ProductService
	categoryService  *services.CategoryService
	cartService      *services.CartService
	wishlistService  *services.WishlistService
	orderService     *services.OrderService
	paymentService   *services.PaymentService
	dashboardService *services.DashboardService
}

// Services bundles the domain services the handlers call
type Services struct {
	Products   *services.ProductService
	Categories *services.CategoryService
	Carts      *services.CartService
	Wishlists  *services.WishlistService
	Orders     *services.OrderService
	Payments   *services.PaymentService
	Dashboard  *services.DashboardService
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, m *metrics.AppMetrics, svc Services) *App {
	return &App{
		config:           cfg,
		metrics:          m,
		productService:   svc.Products,
		categoryService:  svc.Categories,
		cartService:      svc.Carts,
		wishlistService:  svc.Wishlists,
		orderService:     svc.Orders,
		paymentService:   svc.Payments,
		dashboardService: svc.Dashboard,
	}
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(h)
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.MetricsMiddleware(a.metrics))
	r.Use(middleware.RecoverMiddleware)
	r.Use(middleware.IdentityMiddleware)

	// mux skips middleware on a method mismatch, so preflights land here
	notAllowed := middleware.CORSMiddleware(http.HandlerFunc(methodNotAllowed))
	r.MethodNotAllowedHandler = notAllowed

	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = notAllowed

	// Products
	api.HandleFunc("/products", a.ListProductsHandler).Methods(http.MethodGet)
	api.Handle("/products", admin(a.CreateProductHandler)).Methods(http.MethodPost)
	api.HandleFunc("/products/featured", a.FeaturedProductsHandler).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", a.GetProductHandler).Methods(http.MethodGet)
	api.Handle("/products/{id}", admin(a.UpdateProductHandler)).Methods(http.MethodPut)
	api.Handle("/products/{id}", admin(a.DeleteProductHandler)).Methods(http.MethodDelete)
	api.Handle("/products/{id}/reviews", authed(a.AddReviewHandler)).Methods(http.MethodPost)

	// Categories
	api.HandleFunc("/categories", a.ListCategoriesHandler).Methods(http.MethodGet)
	api.Handle("/categories", admin(a.CreateCategoryHandler)).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", a.GetCategoryHandler).Methods(http.MethodGet)
	api.Handle("/categories/{id}", admin(a.UpdateCategoryHandler)).Methods(http.MethodPut)
	api.Handle("/categories/{id}", admin(a.DeleteCategoryHandler)).Methods(http.MethodDelete)

	// Cart
	api.Handle("/cart", authed(a.GetCartHandler)).Methods(http.MethodGet)
	api.Handle("/cart", authed(a.ClearCartHandler)).Methods(http.MethodDelete)
	api.Handle("/cart/items", authed(a.AddCartItemHandler)).Methods(http.MethodPost)
	api.Handle("/cart/items/{productId}", authed(a.UpdateCartItemHandler)).Methods(http.MethodPut)
	api.Handle("/cart/items/{productId}", authed(a.RemoveCartItemHandler)).Methods(http.MethodDelete)

	// Wishlist
	api.Handle("/users/wishlist/items", authed(a.GetWishlistHandler)).Methods(http.MethodGet)
	api.Handle("/users/wishlist/{productId}", authed(a.AddWishlistItemHandler)).Methods(http.MethodPost)
	api.Handle("/users/wishlist/{productId}", authed(a.RemoveWishlistItemHandler)).Methods(http.MethodDelete)

	// Orders
	api.Handle("/orders", authed(a.CreateOrderHandler)).Methods(http.MethodPost)
	api.Handle("/orders", authed(a.ListMyOrdersHandler)).Methods(http.MethodGet)
	api.Handle("/orders/admin/all", admin(a.ListAllOrdersHandler)).Methods(http.MethodGet)
	api.Handle("/orders/{id}", authed(a.GetOrderHandler)).Methods(http.MethodGet)
	api.Handle("/orders/{id}/cancel", authed(a.CancelOrderHandler)).Methods(http.MethodPut)
	api.Handle("/orders/{id}/status", admin(a.UpdateOrderStatusHandler)).Methods(http.MethodPut)

	// Payment
	api.Handle("/payment/create-payment-intent", authed(a.CreatePaymentIntentHandler)).Methods(http.MethodPost)
	api.HandleFunc("/payment/webhook", a.WebhookHandler).Methods(http.MethodPost)
	api.HandleFunc("/payment/config", a.PaymentConfigHandler).Methods(http.MethodGet)

	// Admin
	api.Handle("/admin/dashboard", admin(a.DashboardHandler)).Methods(http.MethodGet)
	api.Handle("/admin/orders/export", admin(a.ExportOrdersHandler)).Methods(http.MethodGet)

	// Health
	r.HandleFunc("/health", a.HealthHandler).Methods(http.MethodGet)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{"success": false, "message": "method not allowed"})
}

// HealthHandler handles health check requests
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{
		"status":  "healthy",
		"service": a.config.OTELServiceName,
		"store":   a.config.StoreDriver,
	})
}
