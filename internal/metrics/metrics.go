package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/SigNoz/storefront-go-app/pkg/config"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Database Metrics
	DBQueriesTotal  metric.Int64Counter
	DBQueryDuration metric.Float64Histogram

	// Business Metrics
	OrdersCreated    metric.Int64Counter
	OrderTransitions metric.Int64Counter
	ProductsViewed   metric.Int64Counter
	CartItemsCount   metric.Int64Gauge
	InventoryLevel   metric.Int64Gauge
	RevenueTotal     metric.Float64Counter
	PaymentIntents   metric.Int64Counter
	WebhookEvents    metric.Int64Counter
	EventsPublished  metric.Int64Counter

	// Application Metrics
	ActiveUsersCount metric.Int64Gauge
	ActiveCartsCount metric.Int64Gauge
	CacheHits        metric.Int64Counter
	CacheMisses      metric.Int64Counter

	// Service name for adding to all metrics
	serviceName string
}

// InitMetrics builds the meter provider and the application instruments.
// With metrics disabled the provider has no reader, so every instrument is
// live but nothing is exported.
func InitMetrics(ctx context.Context, cfg *config.Config) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	if !cfg.MetricsEnabled {
		log.Info().Msg("metrics export disabled")
		provider := sdkmetric.NewMeterProvider()
		m, err := New(provider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
		return m, provider, err
	}

	// Explicit attributes take precedence over OTEL_RESOURCE_ATTRIBUTES
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}
	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}
	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	if !hasServiceName(res) {
		return nil, nil, fmt.Errorf("service.name is not set in resource attributes")
	}

	// WithEndpoint expects host:port without a scheme; WithInsecure for plain http
	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	headers := parseHeaders(cfg.OTELExporterOTLPHeaders)
	if len(headers) > 0 {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(headers))
	}
	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	log.Info().
		Str("endpoint", cfg.OTELExporterOTLPEndpoint).
		Bool("insecure", cfg.OTELExporterOTLPInsecure).
		Int("headers", len(headers)).
		Str("service", cfg.OTELServiceName).
		Msg("metrics exporter configured")

	m, err := New(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return m, meterProvider, nil
}

func hasServiceName(res *resource.Resource) bool {
	for _, kv := range res.Attributes() {
		if kv.Key == semconv.ServiceNameKey {
			return kv.Value.AsString() != ""
		}
	}
	return false
}

// New creates every application instrument on meter
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: serviceName}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.HTTPRequestsTotal, "http.server.request.count", "Total number of HTTP requests"},
		{&m.HTTPRequestsErrors, "http.server.request.error.count", "Total number of HTTP error requests"},
		{&m.DBQueriesTotal, "db.client.queries.count", "Total number of database queries"},
		{&m.OrdersCreated, "orders_created_total", "Total number of orders created"},
		{&m.OrderTransitions, "order_status_transitions_total", "Order status changes by target status"},
		{&m.ProductsViewed, "products_viewed_total", "Total number of product views"},
		{&m.PaymentIntents, "payment_intents_total", "Payment intents requested from the processor"},
		{&m.WebhookEvents, "payment_webhooks_total", "Payment webhook deliveries by type and outcome"},
		{&m.EventsPublished, "order_events_published_total", "Order events handed to the broker"},
		{&m.CacheHits, "cache_hits_total", "Total number of cache hits"},
		{&m.CacheMisses, "cache_misses_total", "Total number of cache misses"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit("1")); err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	gauges := []struct {
		dst  *metric.Int64Gauge
		name string
		desc string
	}{
		{&m.CartItemsCount, "cart_items_count", "Current number of items in user carts"},
		{&m.InventoryLevel, "inventory_level", "Current inventory level for products"},
		{&m.ActiveUsersCount, "active_users_count", "Currently active users"},
		{&m.ActiveCartsCount, "active_carts_count", "Number of active carts with items"},
	}
	for _, g := range gauges {
		if *g.dst, err = meter.Int64Gauge(g.name, metric.WithDescription(g.desc), metric.WithUnit("1")); err != nil {
			return nil, fmt.Errorf("failed to create %s gauge: %w", g.name, err)
		}
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	m.DBQueryDuration, err = meter.Float64Histogram(
		"db.client.queries.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}

	m.RevenueTotal, err = meter.Float64Counter(
		"revenue_total",
		metric.WithDescription("Total revenue from paid orders"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create revenue counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// Attrs is shorthand for a metric option carrying attrs plus service.name
func (m *AppMetrics) Attrs(attrs ...attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(m.WithServiceName(attrs)...)
}

// RecordDBQuery records MySQL query metrics including the SQL statement
func (m *AppMetrics) RecordDBQuery(ctx context.Context, operation, table, statement string, start time.Time, success bool) {
	m.RecordStoreQuery(ctx, "mysql", operation, table, statement, start, success)
}

// RecordStoreQuery records a query against any storage system
func (m *AppMetrics) RecordStoreQuery(ctx context.Context, system, operation, table, statement string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	opt := m.Attrs(
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.statement", statement),
		attribute.String("db.system", system),
		attribute.String("status", status),
	)
	m.DBQueriesTotal.Add(ctx, 1, opt)
	m.DBQueryDuration.Record(ctx, float64(duration), opt)
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	for _, pair := range strings.Split(headerStr, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
