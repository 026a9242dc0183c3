package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/SigNoz/storefront-go-app/internal/api"
	"github.com/SigNoz/storefront-go-app/internal/cache"
	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/events"
	"github.com/SigNoz/storefront-go-app/internal/metrics"
	"github.com/SigNoz/storefront-go-app/internal/payment"
	"github.com/SigNoz/storefront-go-app/internal/services"
	"github.com/SigNoz/storefront-go-app/internal/store"
	"github.com/SigNoz/storefront-go-app/internal/store/memory"
	"github.com/SigNoz/storefront-go-app/internal/store/mongodb"
	"github.com/SigNoz/storefront-go-app/internal/store/mysql"
	"github.com/SigNoz/storefront-go-app/pkg/config"
	"github.com/SigNoz/storefront-go-app/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize OpenTelemetry metrics
	ctx := context.Background()
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error shutting down meter provider")
		}
	}()

	st, err := openStore(ctx, cfg, appMetrics)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error closing store")
		}
	}()

	c, closeCache := openCache(ctx, cfg)
	defer closeCache()

	publisher, closePublisher := openPublisher(cfg)
	defer closePublisher()

	if cfg.StripeSecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY is not set; payment intents will fail")
	}
	processor := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Initialize services
	productService := services.NewProductService(st.Products, st.Categories, c, appMetrics)
	categoryService := services.NewCategoryService(st.Categories, st.Products)
	cartService := services.NewCartService(st.Carts, st.Products, appMetrics)
	wishlistService := services.NewWishlistService(st.Wishlists, st.Products)
	orderService := services.NewOrderService(st.Orders, st.Carts, st.Products, publisher, appMetrics)
	orderService.SetProductCache(c)
	paymentService := services.NewPaymentService(st.Orders, orderService, processor, c, appMetrics,
		cfg.PaymentCurrency, cfg.StripePublishableKey)
	dashboardService := services.NewDashboardService(st)

	scheduler, err := services.NewScheduler(cartService, c)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule jobs")
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := api.NewApp(cfg, appMetrics, api.Services{
		Products:   productService,
		Categories: categoryService,
		Carts:      cartService,
		Wishlists:  wishlistService,
		Orders:     orderService,
		Payments:   paymentService,
		Dashboard:  dashboardService,
	})

	router := mux.NewRouter()
	app.SetupRoutes(router)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.AppPort).
			Str("store", cfg.StoreDriver).
			Str("otlp_endpoint", cfg.OTELExporterOTLPEndpoint).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func openStore(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics) (*store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		database, err := db.NewDB(ctx, cfg.GetDSN(), cfg.OTELServiceName)
		if err != nil {
			return nil, err
		}
		st, err := mysql.New(ctx, database, m)
		if err != nil {
			database.Close()
			return nil, err
		}
		return st, nil
	case config.DriverMongo:
		return mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase, m)
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openCache prefers Redis and falls back to the in-process cache
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewLocal(), func() {}
	}
	r, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.OTELServiceName+":")
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-process cache")
		return cache.NewLocal(), func() {}
	}
	return r, func() {
		if err := r.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}
}

// openPublisher connects to RabbitMQ when configured, otherwise events are logged
func openPublisher(cfg *config.Config) (events.Publisher, func()) {
	if cfg.RabbitMQURL == "" {
		return events.LogPublisher{}, func() {}
	}
	p, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, logging order events instead")
		return events.LogPublisher{}, func() {}
	}
	return p, p.Close
}
