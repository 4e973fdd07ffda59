// Package parser composes the format classifier, the parsing strategies, and
// the quality layer into the single entry point the rest of the system calls.
// Strategies are tried strictly in fidelity order; a failed high-fidelity
// attempt degrades to the structural fallback instead of failing the request.
package parser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/classify"
	"github.com/fundscope/disclosure-cli/internal/model"
)

// Strategy is one family-specific parsing strategy. Implementations are
// stateless and safe for concurrent use; all per-call state (taxonomy
// dictionaries included) is call-scoped.
type Strategy interface {
	Name() string
	Parse(ctx context.Context, content string, path string) model.ParseResult
}

// InlineExtractor lifts embedded XBRL out of inline-XBRL HTML. A false return
// means "no inline XBRL found", which is a fallthrough, not an error.
type InlineExtractor func(htmlText string) (string, bool)

// QualityPipeline validates a successful report and optionally repairs it.
// It runs unconditionally on any report a strategy produces.
type QualityPipeline interface {
	Apply(ctx context.Context, report *model.FundReport) (warnings []string, repaired bool)
}

// Request is the input contract of the facade.
type Request struct {
	// Content is the raw document text (encoding already normalized
	// upstream).
	Content string

	// Path optionally hints at the source file, used for extension-based
	// classification tie-breaking.
	Path string

	// FormatHint, when set, overrides classifier inference entirely; an
	// upstream collaborator that already knows the format supplies it.
	FormatHint model.DocumentFormat

	// SourceDocumentID is propagated into the report for provenance.
	SourceDocumentID string
}

// Facade is the extraction orchestrator.
type Facade struct {
	classifier *classify.Classifier
	native     Strategy
	structural Strategy
	inline     InlineExtractor
	quality    QualityPipeline
}

// New creates a Facade. quality may be nil, in which case reports are
// returned unvalidated with ValidationStatusSkipped.
func New(classifier *classify.Classifier, native, structural Strategy, inline InlineExtractor, quality QualityPipeline) *Facade {
	return &Facade{
		classifier: classifier,
		native:     native,
		structural: structural,
		inline:     inline,
		quality:    quality,
	}
}

// Parse runs the documented fallback chain and always returns a ParseResult:
// a document no strategy can handle yields Success=false with one error per
// attempted strategy, never a panic or a hang beyond the strategies' own
// timeouts.
func (f *Facade) Parse(ctx context.Context, req Request) model.ParseResult {
	start := time.Now()

	verdict := f.classifier.Classify(req.Content, req.Path)
	format := verdict.Format
	if req.FormatHint != "" && req.FormatHint != model.FormatUnknown {
		format = req.FormatHint
	}

	var (
		result model.ParseResult
		tried  []string
		errs   []string
	)

	attempt := func(name string, run func() model.ParseResult) bool {
		tried = append(tried, name)
		result = run()
		if result.Success {
			return true
		}
		for _, e := range result.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", name, e))
		}
		if len(result.Errors) == 0 {
			errs = append(errs, name+": failed without detail")
		}
		return false
	}

	done := false
	switch format {
	case model.FormatInlineXBRL:
		done = attempt("inline_xbrl", func() model.ParseResult {
			extracted, ok := f.inline(req.Content)
			if !ok {
				return model.Failed("inline_xbrl", "no inline XBRL facts found")
			}
			return f.native.Parse(ctx, extracted, req.Path)
		})
	case model.FormatXBRL:
		done = attempt(f.native.Name(), func() model.ParseResult {
			return f.native.Parse(ctx, req.Content, req.Path)
		})
	}

	if !done {
		attempt(f.structural.Name(), func() model.ParseResult {
			return f.structural.Parse(ctx, req.Content, req.Path)
		})
	}

	result.Metadata = model.ParseMetadata{
		DetectedFormat:   verdict.Format,
		FormatConfidence: verdict.Confidence,
		StrategiesTried:  tried,
	}

	if !result.Success {
		result.Errors = errs
		result.StrategyUsed = ""
		result.Metadata.Elapsed = time.Since(start)
		zap.L().Warn("parser: all strategies failed",
			zap.Strings("tried", tried),
			zap.String("detected_format", string(verdict.Format)),
		)
		return result
	}

	report := result.Report
	report.SourceDocumentID = req.SourceDocumentID

	if f.quality != nil {
		qualityWarnings, repaired := f.quality.Apply(ctx, report)
		result.Warnings = append(result.Warnings, qualityWarnings...)
		result.Metadata.RepairApplied = repaired
	} else {
		report.ValidationStatus = model.ValidationStatusSkipped
	}

	result.Metadata.Elapsed = time.Since(start)
	zap.L().Info("parser: document parsed",
		zap.String("strategy", result.StrategyUsed),
		zap.String("fund_code", report.FundCode),
		zap.Float64("quality_score", report.DataQualityScore),
		zap.Duration("elapsed", result.Metadata.Elapsed),
	)
	return result
}
