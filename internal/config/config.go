package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy" mapstructure:"taxonomy"`
	XBRL       XBRLConfig       `yaml:"xbrl" mapstructure:"xbrl"`
	Structural StructuralConfig `yaml:"structural" mapstructure:"structural"`
	Quality    QualityConfig    `yaml:"quality" mapstructure:"quality"`
	Oracle     OracleConfig     `yaml:"oracle" mapstructure:"oracle"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// ClassifyConfig configures format classification.
type ClassifyConfig struct {
	SampleBytes  int    `yaml:"sample_bytes" mapstructure:"sample_bytes"`
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
}

// TaxonomyConfig configures concept-dictionary loading.
type TaxonomyConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// XBRLConfig configures the native XBRL extraction tool.
type XBRLConfig struct {
	ToolPath        string   `yaml:"tool_path" mapstructure:"tool_path"`
	ToolArgs        []string `yaml:"tool_args" mapstructure:"tool_args"`
	ToolTimeoutSecs int      `yaml:"tool_timeout_secs" mapstructure:"tool_timeout_secs"`
	TempDir         string   `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// StructuralConfig configures the HTML table strategy.
type StructuralConfig struct {
	KeywordsFile string `yaml:"keywords_file" mapstructure:"keywords_file"`
	MaxHoldings  int    `yaml:"max_holdings" mapstructure:"max_holdings"`
}

// QualityConfig holds the validation and repair thresholds. The numeric
// values are empirically chosen; change them with domain-expert sign-off.
type QualityConfig struct {
	AllocationSumTolerance float64 `yaml:"allocation_sum_tolerance" mapstructure:"allocation_sum_tolerance"`
	SingleAllocationCap    float64 `yaml:"single_allocation_cap" mapstructure:"single_allocation_cap"`
	IndustrySumCap         float64 `yaml:"industry_sum_cap" mapstructure:"industry_sum_cap"`
	MaxHoldings            int     `yaml:"max_holdings" mapstructure:"max_holdings"`
	HHIWarnThreshold       float64 `yaml:"hhi_warn_threshold" mapstructure:"hhi_warn_threshold"`
	RepairEnabled          bool    `yaml:"repair_enabled" mapstructure:"repair_enabled"`
}

// OracleConfig configures the optional repair oracle. Provider is one of
// "none", "http", "anthropic".
type OracleConfig struct {
	Provider     string  `yaml:"provider" mapstructure:"provider"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	Model        string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentDocuments int `yaml:"max_concurrent_documents" mapstructure:"max_concurrent_documents"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FUNDSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("classify.sample_bytes", 10240)
	v.SetDefault("xbrl.tool_path", "arelle-extract")
	v.SetDefault("xbrl.tool_timeout_secs", 60)
	v.SetDefault("structural.max_holdings", 10)
	v.SetDefault("quality.allocation_sum_tolerance", 0.05)
	v.SetDefault("quality.single_allocation_cap", 0.95)
	v.SetDefault("quality.industry_sum_cap", 1.05)
	v.SetDefault("quality.max_holdings", 10)
	v.SetDefault("quality.hhi_warn_threshold", 0.25)
	v.SetDefault("quality.repair_enabled", true)
	v.SetDefault("oracle.provider", "none")
	v.SetDefault("oracle.model", "claude-haiku-4-5-20251001")
	v.SetDefault("oracle.timeout_secs", 15)
	v.SetDefault("batch.max_concurrent_documents", 4)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for a command mode. Modes: "parse",
// "batch".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "parse", "batch":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Classify.SampleBytes <= 0 {
		problems = append(problems, "classify.sample_bytes must be > 0")
	}
	if c.XBRL.ToolTimeoutSecs <= 0 {
		problems = append(problems, "xbrl.tool_timeout_secs must be > 0")
	}
	fractions := []struct {
		name string
		val  float64
	}{
		{"quality.allocation_sum_tolerance", c.Quality.AllocationSumTolerance},
		{"quality.single_allocation_cap", c.Quality.SingleAllocationCap},
		{"quality.hhi_warn_threshold", c.Quality.HHIWarnThreshold},
	}
	for _, f := range fractions {
		if f.val <= 0 || f.val > 1 {
			problems = append(problems, f.name+" must be in (0, 1]")
		}
	}
	if c.Quality.MaxHoldings < 1 {
		problems = append(problems, "quality.max_holdings must be >= 1")
	}

	switch c.Oracle.Provider {
	case "", "none":
	case "http":
		if c.Oracle.BaseURL == "" {
			problems = append(problems, "oracle.base_url is required for the http provider")
		}
	case "anthropic":
		if c.Oracle.APIKey == "" {
			problems = append(problems, "oracle.api_key is required for the anthropic provider")
		}
	default:
		problems = append(problems, "oracle.provider must be one of none, http, anthropic")
	}

	if mode == "batch" {
		if c.Batch.MaxConcurrentDocuments < 1 || c.Batch.MaxConcurrentDocuments > 64 {
			problems = append(problems, "batch.max_concurrent_documents must be between 1 and 64")
		}
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
