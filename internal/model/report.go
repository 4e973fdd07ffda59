package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType identifies the disclosure period of a fund report.
type ReportType string

const (
	ReportTypeAnnual     ReportType = "annual"
	ReportTypeSemiAnnual ReportType = "semi_annual"
	ReportTypeQuarterly  ReportType = "quarterly"
)

// ValidationStatus summarizes the quality-validation outcome for a report.
type ValidationStatus string

const (
	ValidationStatusPassed   ValidationStatus = "passed"
	ValidationStatusWarnings ValidationStatus = "warnings"
	ValidationStatusFailed   ValidationStatus = "failed"
	ValidationStatusSkipped  ValidationStatus = "skipped"
)

// fundCodePattern matches the 6-digit fund codes used in regulatory filings.
var fundCodePattern = regexp.MustCompile(`^\d{6}$`)

// IsFundCode reports whether s is a well-formed 6-digit fund code.
func IsFundCode(s string) bool {
	return fundCodePattern.MatchString(s)
}

// FundReport is the unified output record produced by every parsing strategy,
// regardless of the source document format.
type FundReport struct {
	// Identity
	FundCode    string `json:"fund_code,omitempty"`
	FundName    string `json:"fund_name,omitempty"`
	FundManager string `json:"fund_manager,omitempty"`
	Custodian   string `json:"custodian,omitempty"`

	// Financial metrics. All optional: a nil pointer means the source
	// document did not carry the value (or it failed coercion).
	NetAssetValue  *decimal.Decimal `json:"net_asset_value,omitempty"`
	TotalNetAssets *decimal.Decimal `json:"total_net_assets,omitempty"`
	TotalShares    *decimal.Decimal `json:"total_shares,omitempty"`
	UnitNAV        *decimal.Decimal `json:"unit_nav,omitempty"`
	AccumulatedNAV *decimal.Decimal `json:"accumulated_nav,omitempty"`

	// Report metadata
	ReportType        ReportType `json:"report_type,omitempty"`
	ReportPeriodStart *time.Time `json:"report_period_start,omitempty"`
	ReportPeriodEnd   *time.Time `json:"report_period_end,omitempty"`
	ReportYear        int        `json:"report_year,omitempty"`
	SourceDocumentID  string     `json:"source_document_id,omitempty"`

	// Parsing provenance
	ParsingMethod     string           `json:"parsing_method,omitempty"`
	ParsingConfidence float64          `json:"parsing_confidence"`
	DataQualityScore  float64          `json:"data_quality_score"`
	ValidationStatus  ValidationStatus `json:"validation_status,omitempty"`
	RepairAssisted    bool             `json:"repair_assisted"`

	AssetAllocations    []AssetAllocation    `json:"asset_allocations,omitempty"`
	TopHoldings         []TopHolding         `json:"top_holdings,omitempty"`
	IndustryAllocations []IndustryAllocation `json:"industry_allocations,omitempty"`
}

// AssetAllocation is one line of a report's asset-class breakdown.
// Percentage is a fraction in [0,1], not percent points.
type AssetAllocation struct {
	AssetType   string           `json:"asset_type"`
	MarketValue *decimal.Decimal `json:"market_value,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
}

// TopHolding is one ranked security position. Rank is contiguous from 1
// within a report and capped at 10.
type TopHolding struct {
	Rank         int              `json:"rank"`
	SecurityCode string           `json:"security_code,omitempty"`
	SecurityName string           `json:"security_name,omitempty"`
	Shares       *decimal.Decimal `json:"shares,omitempty"`
	MarketValue  *decimal.Decimal `json:"market_value,omitempty"`
	Percentage   *decimal.Decimal `json:"percentage,omitempty"`
}

// IndustryAllocation is one line of a report's industry breakdown. Partial
// coverage is normal, so percentages may validly sum below 1.0.
type IndustryAllocation struct {
	IndustryName string           `json:"industry_name"`
	MarketValue  *decimal.Decimal `json:"market_value,omitempty"`
	Percentage   *decimal.Decimal `json:"percentage,omitempty"`
}

// AssetType is the controlled vocabulary for asset-allocation categories.
type AssetType string

const (
	AssetTypeEquity  AssetType = "equity"
	AssetTypeBond    AssetType = "bond"
	AssetTypeFund    AssetType = "fund"
	AssetTypeDeposit AssetType = "deposit"
	AssetTypeCash    AssetType = "cash"
	AssetTypeOther   AssetType = "other"
)

// assetTypeSynonyms maps free-text category labels (CN and EN) to the
// controlled vocabulary. Matching is case-insensitive substring.
var assetTypeSynonyms = []struct {
	keyword string
	t       AssetType
}{
	{"股票", AssetTypeEquity},
	{"权益", AssetTypeEquity},
	{"equity", AssetTypeEquity},
	{"stock", AssetTypeEquity},
	{"债券", AssetTypeBond},
	{"固定收益", AssetTypeBond},
	{"bond", AssetTypeBond},
	{"基金", AssetTypeFund},
	{"fund", AssetTypeFund},
	{"存款", AssetTypeDeposit},
	{"银行存款", AssetTypeDeposit},
	{"deposit", AssetTypeDeposit},
	{"现金", AssetTypeCash},
	{"货币", AssetTypeCash},
	{"cash", AssetTypeCash},
	{"结算备付金", AssetTypeCash},
}

// NormalizeAssetType maps a free-text asset category label to the controlled
// vocabulary. Unrecognized labels map to AssetTypeOther.
func NormalizeAssetType(label string) AssetType {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return AssetTypeOther
	}
	for _, syn := range assetTypeSynonyms {
		if strings.Contains(lower, syn.keyword) {
			return syn.t
		}
	}
	return AssetTypeOther
}
