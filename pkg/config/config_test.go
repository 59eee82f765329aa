package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "inventory-service", cfg.ServiceName)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5, cfg.StockWarningThreshold)
	assert.Equal(t, 10*time.Second, cfg.SupplierTimeout)
	assert.Equal(t, "https://fake-supplier-api.com/order", cfg.SupplierAPIURL)
	assert.Equal(t, 5, cfg.SupplierMaxFailures)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, time.Minute, cfg.AuthRateWindow)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.Warnings)
	assert.Empty(t, cfg.PredictionGenerationURL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STOCK_WARNING_THRESHOLD", "12")
	t.Setenv("REORDER_INTERVAL", "90s")
	t.Setenv("PREDICTION_DEPLOYMENT_ID", "dep-1")
	t.Setenv("PREDICTION_REGION", "eu-de")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 12, cfg.StockWarningThreshold)
	assert.Equal(t, 90*time.Second, cfg.ReorderInterval)
	assert.Equal(t,
		"https://eu-de.ml.cloud.ibm.com/ml/v1/deployments/dep-1/text/generation?version=2021-05-01",
		cfg.PredictionGenerationURL())
}

func TestLoad_InvalidValuesFallBackWithWarnings(t *testing.T) {
	t.Setenv("SUPPLIER_TIMEOUT", "soon")
	t.Setenv("STOCK_WARNING_THRESHOLD", "-3")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 10*time.Second, cfg.SupplierTimeout)
	assert.Equal(t, 5, cfg.StockWarningThreshold)
	assert.False(t, cfg.TracingEnabled)
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoad_ReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HTTP_PORT") })

	cfg := Load(path)

	assert.Equal(t, "9999", cfg.HTTPPort)
}
