// Package quality scores and repairs extracted fund reports. Validation
// checks structural and business-rule consistency; repair applies
// deterministic corrections and may consult a pluggable oracle for the rest.
package quality

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
)

// Config holds the business-rule thresholds. The values are empirically
// chosen in production filings review; tune them in configuration, with
// domain-expert sign-off, rather than in code.
type Config struct {
	// AllocationSumTolerance is the allowed deviation of the asset
	// allocation percentage sum from 1.0. Default: 0.05.
	AllocationSumTolerance float64

	// SingleAllocationCap flags any single allocation line above this
	// fraction. Default: 0.95.
	SingleAllocationCap float64

	// IndustrySumCap is the maximum tolerated industry percentage sum;
	// partial coverage below 1.0 is normal. Default: 1.05.
	IndustrySumCap float64

	// MaxHoldings is the top-holdings cap. Default: 10.
	MaxHoldings int

	// HHIWarnThreshold triggers a concentration warning when the
	// Herfindahl-Hirschman index over holdings exceeds it. Default: 0.25.
	HHIWarnThreshold float64
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		AllocationSumTolerance: 0.05,
		SingleAllocationCap:    0.95,
		IndustrySumCap:         1.05,
		MaxHoldings:            10,
		HHIWarnThreshold:       0.25,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.AllocationSumTolerance <= 0 {
		c.AllocationSumTolerance = def.AllocationSumTolerance
	}
	if c.SingleAllocationCap <= 0 {
		c.SingleAllocationCap = def.SingleAllocationCap
	}
	if c.IndustrySumCap <= 0 {
		c.IndustrySumCap = def.IndustrySumCap
	}
	if c.MaxHoldings <= 0 {
		c.MaxHoldings = def.MaxHoldings
	}
	if c.HHIWarnThreshold <= 0 {
		c.HHIWarnThreshold = def.HHIWarnThreshold
	}
	return c
}

// Validator checks reports against required-field, range, and business rules.
type Validator struct {
	cfg Config
}

// NewValidator creates a Validator; zero config fields take defaults.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg.withDefaults()}
}

// requiredFieldCount is the denominator of the completeness score: fund code,
// fund name, and one of NAV / total net assets.
const requiredFieldCount = 3

// collectionBonus is the completeness boost per non-empty collection,
// capped overall at +0.3.
const collectionBonus = 0.1

// Validate computes the validation result for a report. It never mutates the
// report.
func (v *Validator) Validate(report *model.FundReport) model.ValidationResult {
	res := model.ValidationResult{IsValid: true}

	populated := 0
	if report.FundCode == "" {
		res.MissingRequiredFields = append(res.MissingRequiredFields, "fund_code")
	} else if !model.IsFundCode(report.FundCode) {
		res.InvalidFields = append(res.InvalidFields, "fund_code is not a 6-digit code: "+report.FundCode)
	} else {
		populated++
	}
	if report.FundName == "" {
		res.MissingRequiredFields = append(res.MissingRequiredFields, "fund_name")
	} else {
		populated++
	}
	if report.NetAssetValue == nil && report.TotalNetAssets == nil {
		res.MissingRequiredFields = append(res.MissingRequiredFields, "net_asset_value or total_net_assets")
	} else {
		populated++
	}

	v.checkRanges(report, &res)
	v.checkBusinessRules(report, &res)

	if len(res.MissingRequiredFields) > 0 || len(res.InvalidFields) > 0 {
		res.IsValid = false
	}

	score := float64(populated) / float64(requiredFieldCount)
	bonus := 0.0
	if len(report.AssetAllocations) > 0 {
		bonus += collectionBonus
	}
	if len(report.TopHoldings) > 0 {
		bonus += collectionBonus
	}
	if len(report.IndustryAllocations) > 0 {
		bonus += collectionBonus
	}
	score += bonus
	if score > 1.0 {
		score = 1.0
	}
	res.CompletenessScore = score

	zap.L().Debug("quality: validation complete",
		zap.Bool("is_valid", res.IsValid),
		zap.Float64("completeness", res.CompletenessScore),
		zap.Int("missing", len(res.MissingRequiredFields)),
		zap.Int("invalid", len(res.InvalidFields)),
	)
	return res
}

// checkRanges verifies percentages sit in [0,1] and monetary values are
// non-negative.
func (v *Validator) checkRanges(report *model.FundReport, res *model.ValidationResult) {
	checkMoney := func(name string, d *decimal.Decimal) {
		if d != nil && d.IsNegative() {
			res.InvalidFields = append(res.InvalidFields, name+" is negative")
		}
	}
	checkMoney("net_asset_value", report.NetAssetValue)
	checkMoney("total_net_assets", report.TotalNetAssets)
	checkMoney("total_shares", report.TotalShares)
	checkMoney("unit_nav", report.UnitNAV)
	checkMoney("accumulated_nav", report.AccumulatedNAV)

	one := decimal.NewFromInt(1)
	checkPct := func(name string, d *decimal.Decimal) {
		if d == nil {
			return
		}
		if d.IsNegative() || d.GreaterThan(one) {
			res.InvalidFields = append(res.InvalidFields, name+" percentage outside [0,1]: "+d.String())
		}
	}
	for i, a := range report.AssetAllocations {
		checkPct(fmt.Sprintf("asset_allocation[%d]", i), a.Percentage)
		checkMoney(fmt.Sprintf("asset_allocation[%d] market value", i), a.MarketValue)
	}
	for i, h := range report.TopHoldings {
		checkPct(fmt.Sprintf("top_holding[%d]", i), h.Percentage)
		checkMoney(fmt.Sprintf("top_holding[%d] market value", i), h.MarketValue)
	}
	for i, ind := range report.IndustryAllocations {
		checkPct(fmt.Sprintf("industry_allocation[%d]", i), ind.Percentage)
		checkMoney(fmt.Sprintf("industry_allocation[%d] market value", i), ind.MarketValue)
	}
}

// checkBusinessRules applies the consistency rules: allocation sum near 1.0,
// contiguous holding ranks, the single-line cap, and the industry sum cap.
func (v *Validator) checkBusinessRules(report *model.FundReport, res *model.ValidationResult) {
	if sum, ok := allocationSum(report.AssetAllocations); ok {
		dev := sum - 1.0
		if dev < 0 {
			dev = -dev
		}
		if dev > v.cfg.AllocationSumTolerance {
			res.InvalidFields = append(res.InvalidFields,
				fmt.Sprintf("allocation sum deviates from 1.0: %.4f", sum))
		}
	}

	lineCap := decimal.NewFromFloat(v.cfg.SingleAllocationCap)
	for i, a := range report.AssetAllocations {
		if a.Percentage != nil && a.Percentage.GreaterThan(lineCap) {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("asset_allocation[%d] (%s) above single-line cap: %s", i, a.AssetType, a.Percentage.String()))
		}
	}

	for i, h := range report.TopHoldings {
		if h.Rank != i+1 {
			res.InvalidFields = append(res.InvalidFields,
				fmt.Sprintf("holding ranks not contiguous at position %d (rank %d)", i, h.Rank))
			break
		}
	}
	if len(report.TopHoldings) > v.cfg.MaxHoldings {
		res.InvalidFields = append(res.InvalidFields,
			fmt.Sprintf("holdings exceed cap of %d", v.cfg.MaxHoldings))
	}

	var indSum float64
	for _, ind := range report.IndustryAllocations {
		if ind.Percentage != nil {
			f, _ := ind.Percentage.Float64()
			indSum += f
		}
	}
	if indSum > v.cfg.IndustrySumCap {
		res.InvalidFields = append(res.InvalidFields,
			fmt.Sprintf("industry allocation sum exceeds cap: %.4f", indSum))
	}

	if hhi := holdingsHHI(report.TopHoldings); hhi > v.cfg.HHIWarnThreshold {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("holdings concentration high (HHI %.4f)", hhi))
	}
}

// allocationSum returns the sum of defined allocation percentages; ok is
// false when no line carries a percentage.
func allocationSum(allocs []model.AssetAllocation) (float64, bool) {
	sum := decimal.Zero
	found := false
	for _, a := range allocs {
		if a.Percentage != nil {
			sum = sum.Add(*a.Percentage)
			found = true
		}
	}
	f, _ := sum.Float64()
	return f, found
}

// holdingsHHI computes the Herfindahl-Hirschman index over holding
// percentages, a concentration signal for the warnings trail.
func holdingsHHI(holdings []model.TopHolding) float64 {
	var hhi float64
	for _, h := range holdings {
		if h.Percentage != nil {
			f, _ := h.Percentage.Float64()
			hhi += f * f
		}
	}
	return hhi
}
