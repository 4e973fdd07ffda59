// Package xbrl implements the native-XBRL parsing strategy: an external XBRL
// processor is run against the instance document and its flat fact list is
// mapped onto the domain model via a taxonomy-specific concept dictionary.
package xbrl

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
	"github.com/fundscope/disclosure-cli/internal/numeric"
	"github.com/fundscope/disclosure-cli/internal/taxonomy"
)

// StrategyName is the provenance tag this strategy writes into results.
const StrategyName = "native_xbrl"

// Confidence levels by dictionary provenance: a recognized taxonomy maps
// concepts precisely, the generic fallback only approximately.
const (
	confidenceRecognized = 0.9
	confidenceFallback   = 0.6
)

// Strategy parses native XBRL documents. It is stateless: the concept
// dictionary is resolved into a call-scoped value on every parse, so one
// Strategy instance is safe for concurrent use.
type Strategy struct {
	registry *taxonomy.Registry
	tool     FactExtractor
}

// New creates a native-XBRL Strategy.
func New(registry *taxonomy.Registry, tool FactExtractor) *Strategy {
	return &Strategy{registry: registry, tool: tool}
}

// Name implements parser.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Parse runs the external tool and maps its facts to a FundReport. Every
// failure mode (tool error, timeout, empty fact list) yields a failed
// ParseResult rather than an error or panic.
func (s *Strategy) Parse(ctx context.Context, content string, path string) model.ParseResult {
	schemaRef := taxonomy.DetectSchemaRef(content)
	dict := s.registry.Resolve(schemaRef)

	facts, err := s.tool.Extract(ctx, content)
	if err != nil {
		return model.Failed(StrategyName, err.Error())
	}

	report, warnings := mapFacts(facts, dict)
	if report == nil {
		return model.Failed(StrategyName, "no dictionary concept matched any extracted fact")
	}

	report.ParsingMethod = StrategyName
	if dict.Name == "default" {
		report.ParsingConfidence = confidenceFallback
		warnings = append(warnings, "schema reference unrecognized, generic concept dictionary used: "+schemaRef)
	} else {
		report.ParsingConfidence = confidenceRecognized
	}
	inferPeriod(report, content)

	zap.L().Debug("xbrl: parse complete",
		zap.String("dictionary", dict.Name),
		zap.String("schema_ref", schemaRef),
		zap.Int("facts", len(facts)),
		zap.String("fund_code", report.FundCode),
	)

	return model.ParseResult{
		Success:      true,
		Report:       report,
		Warnings:     warnings,
		StrategyUsed: StrategyName,
	}
}

// mapFacts assigns facts to logical fields by synonym priority. For each fact
// the dictionary fields are tried in order; the first still-unassigned field
// whose synonym list matches the concept name (case-insensitive substring)
// takes the value. Returns nil when nothing at all matched.
func mapFacts(facts []Fact, dict taxonomy.Dictionary) (*model.FundReport, []string) {
	report := &model.FundReport{}
	assigned := make(map[string]bool, len(dict.Fields))
	var warnings []string
	matched := 0

	for _, fact := range facts {
		concept := strings.ToLower(strings.TrimSpace(fact.Concept))
		if concept == "" {
			continue
		}
		for _, fm := range dict.Fields {
			if assigned[fm.Field] || !conceptMatches(concept, fm.Concepts) {
				continue
			}
			if ok := assignField(report, fm, fact.Value); ok {
				assigned[fm.Field] = true
				matched++
			} else {
				warnings = append(warnings, "unparsable value for "+fm.Field+": "+strings.TrimSpace(fact.Value))
			}
			break
		}
	}

	if matched == 0 {
		return nil, warnings
	}
	return report, warnings
}

func conceptMatches(concept string, synonyms []string) bool {
	for _, syn := range synonyms {
		if syn != "" && strings.Contains(concept, strings.ToLower(syn)) {
			return true
		}
	}
	return false
}

// assignField coerces a fact value into its declared kind and stores it.
// Returns false when the value cannot be coerced; the field stays empty and
// later facts may still claim it.
func assignField(report *model.FundReport, fm taxonomy.FieldMapping, raw string) bool {
	value := strings.TrimSpace(raw)
	if value == "" {
		return false
	}

	switch fm.Field {
	case taxonomy.FieldFundCode:
		// Only a well-formed 6-digit code is accepted; anything else stays
		// empty rather than becoming a mis-shaped identifier.
		if !model.IsFundCode(value) {
			return false
		}
		report.FundCode = value
	case taxonomy.FieldFundName:
		report.FundName = value
	case taxonomy.FieldFundManager:
		report.FundManager = value
	case taxonomy.FieldCustodian:
		report.Custodian = value
	case taxonomy.FieldNetAssetValue:
		return setDecimal(&report.NetAssetValue, value)
	case taxonomy.FieldTotalNetAssets:
		return setDecimal(&report.TotalNetAssets, value)
	case taxonomy.FieldTotalShares:
		return setDecimal(&report.TotalShares, value)
	case taxonomy.FieldUnitNAV:
		return setDecimal(&report.UnitNAV, value)
	case taxonomy.FieldAccumulatedNAV:
		return setDecimal(&report.AccumulatedNAV, value)
	case taxonomy.FieldReportYear:
		year, err := strconv.Atoi(value)
		if err != nil || year < 1990 || year > 2100 {
			return false
		}
		report.ReportYear = year
	default:
		return false
	}
	return true
}

func setDecimal(dst **decimal.Decimal, raw string) bool {
	d, ok := numeric.ParseDecimal(raw)
	if !ok {
		return false
	}
	*dst = &d
	return true
}

// inferPeriod fills report type and year from document text when the fact
// list did not carry them.
func inferPeriod(report *model.FundReport, content string) {
	sample := content
	if len(sample) > 32*1024 {
		sample = sample[:32*1024]
	}

	if report.ReportType == "" {
		switch {
		case strings.Contains(sample, "半年度"):
			report.ReportType = model.ReportTypeSemiAnnual
		case strings.Contains(sample, "季度"), strings.Contains(sample, "季报"):
			report.ReportType = model.ReportTypeQuarterly
		case strings.Contains(sample, "年度"), strings.Contains(sample, "年报"):
			report.ReportType = model.ReportTypeAnnual
		}
	}

	if report.ReportYear == 0 {
		if y := findYear(sample); y != 0 {
			report.ReportYear = y
		}
	}
}

func findYear(s string) int {
	for i := 0; i+4 <= len(s); i++ {
		if s[i] < '1' || s[i] > '2' {
			continue
		}
		y, err := strconv.Atoi(s[i : i+4])
		if err == nil && y >= 1998 && y <= time.Now().Year()+1 {
			// Avoid matching inside longer digit runs.
			if (i == 0 || !isDigit(s[i-1])) && (i+4 == len(s) || !isDigit(s[i+4])) {
				return y
			}
		}
	}
	return 0
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
