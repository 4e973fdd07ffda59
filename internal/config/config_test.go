package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10240, cfg.Classify.SampleBytes)
	assert.Equal(t, "arelle-extract", cfg.XBRL.ToolPath)
	assert.Equal(t, 60, cfg.XBRL.ToolTimeoutSecs)
	assert.Equal(t, 10, cfg.Structural.MaxHoldings)
	assert.InDelta(t, 0.05, cfg.Quality.AllocationSumTolerance, 0.001)
	assert.InDelta(t, 0.95, cfg.Quality.SingleAllocationCap, 0.001)
	assert.InDelta(t, 1.05, cfg.Quality.IndustrySumCap, 0.001)
	assert.Equal(t, 10, cfg.Quality.MaxHoldings)
	assert.InDelta(t, 0.25, cfg.Quality.HHIWarnThreshold, 0.001)
	assert.True(t, cfg.Quality.RepairEnabled)
	assert.Equal(t, "none", cfg.Oracle.Provider)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Oracle.Model)
	assert.Equal(t, 15, cfg.Oracle.TimeoutSecs)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentDocuments)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
classify:
  sample_bytes: 4096
xbrl:
  tool_path: /usr/local/bin/arelle
  tool_timeout_secs: 30
quality:
  allocation_sum_tolerance: 0.02
batch:
  max_concurrent_documents: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4096, cfg.Classify.SampleBytes)
	assert.Equal(t, "/usr/local/bin/arelle", cfg.XBRL.ToolPath)
	assert.Equal(t, 30, cfg.XBRL.ToolTimeoutSecs)
	assert.InDelta(t, 0.02, cfg.Quality.AllocationSumTolerance, 0.001)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentDocuments)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.95, cfg.Quality.SingleAllocationCap, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
xbrl:
  tool_path: /opt/arelle
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("FUNDSCOPE_LOG_LEVEL", "warn")
	t.Setenv("FUNDSCOPE_XBRL_TOOL_PATH", "/usr/bin/arelle")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/usr/bin/arelle", cfg.XBRL.ToolPath)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("FUNDSCOPE_BATCH_MAX_CONCURRENT_DOCUMENTS", "16")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Batch.MaxConcurrentDocuments)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Classify.SampleBytes = 10240
	cfg.XBRL.ToolTimeoutSecs = 60
	cfg.Quality.AllocationSumTolerance = 0.05
	cfg.Quality.SingleAllocationCap = 0.95
	cfg.Quality.HHIWarnThreshold = 0.25
	cfg.Quality.MaxHoldings = 10
	cfg.Batch.MaxConcurrentDocuments = 4
	return cfg
}

func TestValidateParse_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("parse"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateThresholdBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Quality.AllocationSumTolerance = 0
	err := cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quality.allocation_sum_tolerance")

	cfg = validDefaults()
	cfg.Quality.SingleAllocationCap = 1.5
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quality.single_allocation_cap")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentDocuments = 0
	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_documents must be between 1 and 64")

	cfg.Batch.MaxConcurrentDocuments = 65
	err = cfg.Validate("batch")
	assert.Error(t, err)

	cfg.Batch.MaxConcurrentDocuments = 64
	assert.NoError(t, cfg.Validate("batch"))

	// The parse mode does not care about batch concurrency.
	cfg.Batch.MaxConcurrentDocuments = 0
	assert.NoError(t, cfg.Validate("parse"))
}

func TestValidateOracleProviders(t *testing.T) {
	cfg := validDefaults()
	cfg.Oracle.Provider = "http"
	err := cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oracle.base_url is required")

	cfg.Oracle.BaseURL = "https://repair.internal"
	assert.NoError(t, cfg.Validate("parse"))

	cfg = validDefaults()
	cfg.Oracle.Provider = "anthropic"
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oracle.api_key is required")

	cfg.Oracle.APIKey = "sk-ant-key"
	assert.NoError(t, cfg.Validate("parse"))

	cfg = validDefaults()
	cfg.Oracle.Provider = "carrier-pigeon"
	err = cfg.Validate("parse")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oracle.provider must be one of")
}
