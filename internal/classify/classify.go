// Package classify inspects raw document content and decides which parsing
// strategy family applies: native XBRL, inline XBRL embedded in HTML, or
// legacy plain HTML. Classification is a pure function over a bounded content
// prefix; ambiguous input yields FormatUnknown, never an error.
package classify

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
)

const (
	defaultSampleBytes     = 10 * 1024
	defaultAcceptThreshold = 0.5
	defaultMinDomainHits   = 2
)

// Config controls classification. Marker and keyword sets are data, not code:
// they can be overridden from a yaml file to tune for new filing templates
// without a release.
type Config struct {
	// SampleBytes bounds how much of the document is inspected. Large
	// filings are classified from their prefix alone.
	SampleBytes int `yaml:"sample_bytes"`

	// AcceptThreshold is the fraction of a format's marker set that must
	// match for the format to be accepted.
	AcceptThreshold float64 `yaml:"accept_threshold"`

	// MinDomainHits is the number of domain keywords an HTML document must
	// contain; it keeps unrelated HTML out of the html verdict.
	MinDomainHits int `yaml:"min_domain_hits"`

	XBRLMarkers    []string `yaml:"xbrl_markers"`
	InlineMarkers  []string `yaml:"inline_markers"`
	HTMLMarkers    []string `yaml:"html_markers"`
	DomainKeywords []string `yaml:"domain_keywords"`
}

// DefaultConfig returns the built-in marker and keyword sets.
func DefaultConfig() Config {
	return Config{
		SampleBytes:     defaultSampleBytes,
		AcceptThreshold: defaultAcceptThreshold,
		MinDomainHits:   defaultMinDomainHits,
		XBRLMarkers: []string{
			"<xbrl",
			"xmlns:xbrli",
			"xbrli:context",
			"contextref=",
			"schemaref",
			"xlink:href",
		},
		InlineMarkers: []string{
			"xmlns:ix",
			"<ix:header",
			"<ix:nonfraction",
			"<ix:nonnumeric",
			"ix:hidden",
		},
		HTMLMarkers: []string{
			"<html",
			"<body",
			"<table",
			"<td",
		},
		DomainKeywords: []string{
			"基金",
			"净值",
			"资产净值",
			"年度报告",
			"半年度报告",
			"季度报告",
			"基金管理人",
			"fund",
			"net asset",
			"annual report",
		},
	}
}

// Classifier scores content against per-format marker sets. It holds only
// immutable configuration and is safe for concurrent use.
type Classifier struct {
	cfg Config
}

// New creates a Classifier. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.SampleBytes <= 0 {
		cfg.SampleBytes = def.SampleBytes
	}
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = def.AcceptThreshold
	}
	if cfg.MinDomainHits <= 0 {
		cfg.MinDomainHits = def.MinDomainHits
	}
	if len(cfg.XBRLMarkers) == 0 {
		cfg.XBRLMarkers = def.XBRLMarkers
	}
	if len(cfg.InlineMarkers) == 0 {
		cfg.InlineMarkers = def.InlineMarkers
	}
	if len(cfg.HTMLMarkers) == 0 {
		cfg.HTMLMarkers = def.HTMLMarkers
	}
	if len(cfg.DomainKeywords) == 0 {
		cfg.DomainKeywords = def.DomainKeywords
	}
	return &Classifier{cfg: cfg}
}

// Classify inspects a bounded prefix of content and returns a format verdict
// with per-format confidence scores. hintPath, when non-empty, breaks ties by
// file extension after marker scoring fails. Pure: identical input always
// yields an identical verdict.
func (c *Classifier) Classify(content string, hintPath string) model.FormatVerdict {
	sample := content
	if len(sample) > c.cfg.SampleBytes {
		sample = sample[:c.cfg.SampleBytes]
	}
	sample = strings.ToLower(sample)

	scores := map[model.DocumentFormat]float64{
		model.FormatXBRL:       markerScore(sample, c.cfg.XBRLMarkers),
		model.FormatInlineXBRL: markerScore(sample, c.cfg.InlineMarkers),
		model.FormatHTML:       markerScore(sample, c.cfg.HTMLMarkers),
	}
	domainHits := countHits(sample, c.cfg.DomainKeywords)

	verdict := model.FormatVerdict{Format: model.FormatUnknown, Confidence: scores}

	// Inline XBRL is checked first: inline documents also carry plain XBRL
	// and HTML markers, so the more specific family must win.
	switch {
	case scores[model.FormatInlineXBRL] >= c.cfg.AcceptThreshold:
		verdict.Format = model.FormatInlineXBRL
	case scores[model.FormatXBRL] >= c.cfg.AcceptThreshold:
		verdict.Format = model.FormatXBRL
	case scores[model.FormatHTML] >= c.cfg.AcceptThreshold && domainHits >= c.cfg.MinDomainHits:
		verdict.Format = model.FormatHTML
	default:
		if f, ok := formatFromExtension(hintPath); ok {
			verdict.Format = f
		}
	}

	zap.L().Debug("classify: format verdict",
		zap.String("format", string(verdict.Format)),
		zap.Float64("xbrl_score", scores[model.FormatXBRL]),
		zap.Float64("inline_score", scores[model.FormatInlineXBRL]),
		zap.Float64("html_score", scores[model.FormatHTML]),
		zap.Int("domain_hits", domainHits),
	)
	return verdict
}

func markerScore(sample string, markers []string) float64 {
	if len(markers) == 0 {
		return 0
	}
	return float64(countHits(sample, markers)) / float64(len(markers))
}

func countHits(sample string, patterns []string) int {
	hits := 0
	for _, p := range patterns {
		if strings.Contains(sample, strings.ToLower(p)) {
			hits++
		}
	}
	return hits
}

// formatFromExtension maps a file extension hint to a format. Used only when
// marker scoring is inconclusive.
func formatFromExtension(path string) (model.DocumentFormat, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xbrl", ".xml":
		return model.FormatXBRL, true
	case ".html", ".htm":
		return model.FormatHTML, true
	default:
		return model.FormatUnknown, false
	}
}
