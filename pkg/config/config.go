package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/smart-inventory/pkg/database"
)

// Config holds the inventory service configuration
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string

	HTTPPort       string
	GRPCPort       string
	RequestTimeout time.Duration

	DBDriver string
	Database database.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers []string
	KafkaGroupID string

	AuthRateLimit  int
	AuthRateWindow time.Duration

	JWTSecret     string
	JWTTTL        time.Duration
	AdminUsername string
	AdminPassword string

	StockWarningThreshold int

	SupplierAPIURL      string
	SupplierTimeout     time.Duration
	SupplierMaxFailures int
	SupplierOpenTimeout time.Duration
	ReorderInterval     time.Duration
	ReorderCycle        time.Duration
	ReorderConcurrency  int

	PredictionAPIKey       string
	PredictionRegion       string
	PredictionDeploymentID string
	PredictionTokenURL     string
	PredictionTimeout      time.Duration

	TracingEnabled bool
	JaegerEndpoint string

	// Warnings lists values that could not be parsed and were replaced by defaults
	Warnings []string
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// PredictionGenerationURL builds the deployment text generation endpoint
func (c *Config) PredictionGenerationURL() string {
	if c.PredictionDeploymentID == "" {
		return ""
	}
	return fmt.Sprintf(
		"https://%s.ml.cloud.ibm.com/ml/v1/deployments/%s/text/generation?version=2021-05-01",
		c.PredictionRegion, c.PredictionDeploymentID,
	)
}

// Load reads an optional .env file and then the process environment
func Load(envFiles ...string) *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load(envFiles...)

	l := &loader{}
	cfg := &Config{
		ServiceName: l.str("OTEL_SERVICE_NAME", "inventory-service"),
		Environment: l.str("ENVIRONMENT", "development"),
		LogLevel:    l.str("LOG_LEVEL", "info"),

		HTTPPort:       l.str("HTTP_PORT", "8082"),
		GRPCPort:       l.str("GRPC_PORT", "9092"),
		RequestTimeout: l.duration("REQUEST_TIMEOUT", 30*time.Second),

		DBDriver: strings.ToLower(l.str("DB_DRIVER", "postgres")),
		Database: database.Config{
			Host:     l.str("DB_HOST", "localhost"),
			Port:     l.str("DB_PORT", "5432"),
			User:     l.str("DB_USER", "postgres"),
			Password: l.str("DB_PASSWORD", "postgres"),
			DBName:   l.str("DB_NAME", "inventorydb"),
			SSLMode:  l.str("DB_SSLMODE", "disable"),
		},

		RedisAddr:     l.str("REDIS_ADDR", ""),
		RedisPassword: l.str("REDIS_PASSWORD", ""),
		RedisDB:       l.integer("REDIS_DB", 0),

		KafkaBrokers: l.list("KAFKA_BROKERS"),
		KafkaGroupID: l.str("KAFKA_GROUP_ID", "inventory-service"),

		AuthRateLimit:  l.integer("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: l.duration("AUTH_RATE_WINDOW", time.Minute),

		JWTSecret:     l.str("JWT_SECRET", "change-me-in-production"),
		JWTTTL:        l.duration("JWT_TTL", 24*time.Hour),
		AdminUsername: l.str("ADMIN_USERNAME", ""),
		AdminPassword: l.str("ADMIN_PASSWORD", ""),

		StockWarningThreshold: l.integer("STOCK_WARNING_THRESHOLD", 5),

		SupplierAPIURL:      l.str("SUPPLIER_API_URL", "https://fake-supplier-api.com/order"),
		SupplierTimeout:     l.duration("SUPPLIER_TIMEOUT", 10*time.Second),
		SupplierMaxFailures: l.integer("SUPPLIER_MAX_FAILURES", 5),
		SupplierOpenTimeout: l.duration("SUPPLIER_OPEN_TIMEOUT", 30*time.Second),
		ReorderInterval:     l.duration("REORDER_INTERVAL", 0),
		ReorderCycle:        l.duration("REORDER_CYCLE", time.Hour),
		ReorderConcurrency:  l.integer("REORDER_CONCURRENCY", 4),

		PredictionAPIKey:       l.str("PREDICTION_API_KEY", ""),
		PredictionRegion:       l.str("PREDICTION_REGION", "us-south"),
		PredictionDeploymentID: l.str("PREDICTION_DEPLOYMENT_ID", ""),
		PredictionTokenURL:     l.str("PREDICTION_TOKEN_URL", "https://iam.cloud.ibm.com/identity/token"),
		PredictionTimeout:      l.duration("PREDICTION_TIMEOUT", 30*time.Second),

		TracingEnabled: l.boolean("TRACING_ENABLED", false),
		JaegerEndpoint: l.str("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
	}

	if cfg.StockWarningThreshold <= 0 {
		l.warn("STOCK_WARNING_THRESHOLD", strconv.Itoa(cfg.StockWarningThreshold))
		cfg.StockWarningThreshold = 5
	}
	if cfg.ReorderConcurrency <= 0 {
		l.warn("REORDER_CONCURRENCY", strconv.Itoa(cfg.ReorderConcurrency))
		cfg.ReorderConcurrency = 4
	}

	cfg.Warnings = l.warnings
	return cfg
}

type loader struct {
	warnings []string
}

func (l *loader) warn(key, value string) {
	l.warnings = append(l.warnings, fmt.Sprintf("invalid %s=%q, using default", key, value))
}

func (l *loader) str(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (l *loader) integer(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.warn(key, raw)
		return defaultValue
	}
	return v
}

func (l *loader) duration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		l.warn(key, raw)
		return defaultValue
	}
	return v
}

func (l *loader) boolean(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.warn(key, raw)
		return defaultValue
	}
	return v
}

func (l *loader) list(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
