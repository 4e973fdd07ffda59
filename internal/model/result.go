package model

import "time"

// DocumentFormat is the wire-format verdict for a raw filing.
type DocumentFormat string

const (
	FormatXBRL       DocumentFormat = "xbrl"
	FormatInlineXBRL DocumentFormat = "inline_xbrl"
	FormatHTML       DocumentFormat = "html"
	FormatUnknown    DocumentFormat = "unknown"
)

// FormatVerdict is the outcome of format classification: the chosen format
// plus the per-format match scores that led to it.
type FormatVerdict struct {
	Format     DocumentFormat             `json:"format"`
	Confidence map[DocumentFormat]float64 `json:"confidence"`
}

// ConfidenceFor returns the classifier's score for a format (0 if unscored).
func (v FormatVerdict) ConfidenceFor(f DocumentFormat) float64 {
	return v.Confidence[f]
}

// ParseMetadata carries provenance about a single parse attempt, consumed by
// downstream metrics collaborators regardless of success.
type ParseMetadata struct {
	DetectedFormat   DocumentFormat             `json:"detected_format"`
	FormatConfidence map[DocumentFormat]float64 `json:"format_confidence,omitempty"`
	Elapsed          time.Duration              `json:"elapsed"`
	RepairApplied    bool                       `json:"repair_applied"`
	StrategiesTried  []string                   `json:"strategies_tried,omitempty"`
}

// ParseResult is the single output contract of the extraction facade. A
// document that no strategy can parse still yields a ParseResult with
// Success=false and one error per attempted strategy.
type ParseResult struct {
	Success      bool          `json:"success"`
	Report       *FundReport   `json:"report,omitempty"`
	Errors       []string      `json:"errors,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
	StrategyUsed string        `json:"strategy_used,omitempty"`
	Metadata     ParseMetadata `json:"metadata"`
}

// Failed builds a failed ParseResult for a strategy with the given errors.
func Failed(strategy string, errs ...string) ParseResult {
	return ParseResult{
		Success:      false,
		Errors:       errs,
		StrategyUsed: strategy,
	}
}

// ValidationResult is the outcome of quality validation over a FundReport.
type ValidationResult struct {
	IsValid               bool     `json:"is_valid"`
	MissingRequiredFields []string `json:"missing_required_fields,omitempty"`
	InvalidFields         []string `json:"invalid_fields,omitempty"`
	Warnings              []string `json:"warnings,omitempty"`
	CompletenessScore     float64  `json:"completeness_score"`
}

// Issues returns every problem the validator found, missing fields first.
func (r ValidationResult) Issues() []string {
	out := make([]string, 0, len(r.MissingRequiredFields)+len(r.InvalidFields))
	for _, f := range r.MissingRequiredFields {
		out = append(out, "missing required field: "+f)
	}
	out = append(out, r.InvalidFields...)
	return out
}
