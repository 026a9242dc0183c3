package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store drivers accepted by STORE_DRIVER
const (
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds application configuration from environment variables
type Config struct {
	// Application
	AppPort     string
	StoreDriver string
	LogLevel    string
	LogFormat   string // "console" or "json"

	// MySQL
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Redis; empty address selects the in-process cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ; empty URL disables event publishing
	RabbitMQURL      string
	RabbitMQExchange string

	// Stripe
	StripeSecretKey      string
	StripeWebhookSecret  string
	StripePublishableKey string
	PaymentCurrency      string

	// OpenTelemetry
	MetricsEnabled            bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPProtocol  string
	OTELExporterOTLPHeaders   string // For SigNoz Cloud: signoz-ingestion-key=<key>
	OTELExporterOTLPInsecure  bool   // true for http://, false for https://
	OTELServiceName           string
	OTELServiceVersion        string
	OTELDeploymentEnvironment string
	OTELResourceAttributes    string
}

// LoadConfig reads an optional .env file, then the environment, falling back
// to local-development defaults
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("error loading .env file")
	}

	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", DriverMySQL),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "storefront"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "storefront.orders"),

		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		PaymentCurrency:      getEnv("PAYMENT_CURRENCY", "usd"),

		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPProtocol:  getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf"),
		OTELExporterOTLPHeaders:   getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OTELExporterOTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "storefront-go-app"),
		OTELServiceVersion:        getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		OTELDeploymentEnvironment: getEnv("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),
		OTELResourceAttributes:    getEnv("OTEL_RESOURCE_ATTRIBUTES", ""),
	}
}

// GetDSN builds the MySQL DSN through the driver's own formatter
func (c *Config) GetDSN() string {
	dsn := mysql.NewConfig()
	dsn.User = c.DBUser
	dsn.Passwd = c.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	dsn.DBName = c.DBName
	dsn.ParseTime = true
	dsn.Collation = "utf8mb4_unicode_ci"
	return dsn.FormatDSN()
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.AppPort
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMySQL, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if port, err := strconv.Atoi(c.AppPort); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid APP_PORT %q", c.AppPort)
	}
	if len(c.PaymentCurrency) != 3 {
		return fmt.Errorf("invalid PAYMENT_CURRENCY %q", c.PaymentCurrency)
	}
	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		log.Warn().Msg("STRIPE_WEBHOOK_SECRET is empty; webhooks will fail signature checks")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if v == "yes" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("not a boolean, using default")
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("not an integer, using default")
		return fallback
	}
	return n
}
