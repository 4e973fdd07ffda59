package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/classify"
	"github.com/fundscope/disclosure-cli/internal/config"
	"github.com/fundscope/disclosure-cli/internal/inlinexbrl"
	"github.com/fundscope/disclosure-cli/internal/parser"
	"github.com/fundscope/disclosure-cli/internal/quality"
	"github.com/fundscope/disclosure-cli/internal/structural"
	"github.com/fundscope/disclosure-cli/internal/taxonomy"
	"github.com/fundscope/disclosure-cli/internal/xbrl"
	"github.com/fundscope/disclosure-cli/pkg/oracle"
)

// initFacade wires the classifier, both strategies, and the quality layer
// from the loaded configuration.
func initFacade() (*parser.Facade, error) {
	classifier, err := initClassifier()
	if err != nil {
		return nil, err
	}

	registry, err := initTaxonomies()
	if err != nil {
		return nil, err
	}

	tool := xbrl.NewToolRunner(xbrl.ToolConfig{
		Path:    cfg.XBRL.ToolPath,
		Args:    cfg.XBRL.ToolArgs,
		Timeout: time.Duration(cfg.XBRL.ToolTimeoutSecs) * time.Second,
		TempDir: cfg.XBRL.TempDir,
	})
	native := xbrl.New(registry, tool)

	structuralCfg := structural.DefaultConfig()
	if cfg.Structural.KeywordsFile != "" {
		structuralCfg, err = structural.LoadConfig(cfg.Structural.KeywordsFile)
		if err != nil {
			return nil, eris.Wrap(err, "load structural keywords")
		}
	}
	if cfg.Structural.MaxHoldings > 0 {
		structuralCfg.MaxHoldings = cfg.Structural.MaxHoldings
	}
	html := structural.New(structuralCfg)

	qualityPipeline, err := initQuality()
	if err != nil {
		return nil, err
	}

	return parser.New(classifier, native, html, inlinexbrl.Extract, qualityPipeline), nil
}

func initClassifier() (*classify.Classifier, error) {
	classifyCfg := classify.Config{SampleBytes: cfg.Classify.SampleBytes}
	if cfg.Classify.KeywordsFile != "" {
		loaded, err := classify.LoadConfig(cfg.Classify.KeywordsFile)
		if err != nil {
			return nil, eris.Wrap(err, "load classify keywords")
		}
		loaded.SampleBytes = cfg.Classify.SampleBytes
		classifyCfg = loaded
	}
	return classify.New(classifyCfg), nil
}

func initTaxonomies() (*taxonomy.Registry, error) {
	registry := taxonomy.NewRegistry()
	if cfg.Taxonomy.Dir != "" {
		if err := registry.LoadDir(cfg.Taxonomy.Dir); err != nil {
			return nil, eris.Wrap(err, "load taxonomy dir")
		}
		zap.L().Info("taxonomy dictionaries loaded",
			zap.String("dir", cfg.Taxonomy.Dir),
			zap.Strings("names", registry.Names()),
		)
	}
	return registry, nil
}

func initQuality() (*quality.Pipeline, error) {
	qcfg := quality.Config{
		AllocationSumTolerance: cfg.Quality.AllocationSumTolerance,
		SingleAllocationCap:    cfg.Quality.SingleAllocationCap,
		IndustrySumCap:         cfg.Quality.IndustrySumCap,
		MaxHoldings:            cfg.Quality.MaxHoldings,
		HHIWarnThreshold:       cfg.Quality.HHIWarnThreshold,
	}

	validator := quality.NewValidator(qcfg)
	if !cfg.Quality.RepairEnabled {
		return quality.NewPipeline(validator, nil), nil
	}

	oc, err := initOracle(cfg.Oracle)
	if err != nil {
		return nil, err
	}
	return quality.NewPipeline(validator, quality.NewRepairer(qcfg, oc)), nil
}

// initOracle returns nil for the "none" provider; the repairer then runs
// deterministic rules only.
func initOracle(ocfg config.OracleConfig) (oracle.Client, error) {
	timeout := time.Duration(ocfg.TimeoutSecs) * time.Second
	switch ocfg.Provider {
	case "", "none":
		return nil, nil
	case "http":
		opts := []oracle.Option{oracle.WithTimeout(timeout)}
		if ocfg.RateLimitRPS > 0 {
			opts = append(opts, oracle.WithRateLimit(ocfg.RateLimitRPS))
		}
		return oracle.NewHTTPClient(ocfg.BaseURL, ocfg.APIKey, opts...), nil
	case "anthropic":
		return oracle.NewAnthropicOracle(ocfg.APIKey, ocfg.Model, timeout), nil
	default:
		return nil, eris.Errorf("unknown oracle provider %q", ocfg.Provider)
	}
}
