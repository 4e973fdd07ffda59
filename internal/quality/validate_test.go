package quality

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundscope/disclosure-cli/internal/model"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func completeReport() *model.FundReport {
	return &model.FundReport{
		FundCode:      "000001",
		FundName:      "华夏成长混合型证券投资基金",
		NetAssetValue: dec("1234567890.12"),
		AssetAllocations: []model.AssetAllocation{
			{AssetType: "equity", MarketValue: dec("800000000"), Percentage: dec("0.648")},
			{AssetType: "bond", MarketValue: dec("300000000"), Percentage: dec("0.243")},
			{AssetType: "cash", MarketValue: dec("134567890.12"), Percentage: dec("0.109")},
		},
		TopHoldings: []model.TopHolding{
			{Rank: 1, SecurityCode: "600519", SecurityName: "贵州茅台", Percentage: dec("0.08")},
			{Rank: 2, SecurityCode: "000858", SecurityName: "五粮液", Percentage: dec("0.06")},
		},
		IndustryAllocations: []model.IndustryAllocation{
			{IndustryName: "制造业", Percentage: dec("0.45")},
		},
	}
}

func TestValidateCompleteReport(t *testing.T) {
	v := NewValidator(Config{})
	res := v.Validate(completeReport())

	assert.True(t, res.IsValid)
	assert.Empty(t, res.MissingRequiredFields)
	assert.Empty(t, res.InvalidFields)
	assert.Equal(t, 1.0, res.CompletenessScore)
}

func TestValidateMissingRequiredFields(t *testing.T) {
	v := NewValidator(Config{})
	res := v.Validate(&model.FundReport{})

	assert.False(t, res.IsValid)
	assert.Contains(t, res.MissingRequiredFields, "fund_code")
	assert.Contains(t, res.MissingRequiredFields, "fund_name")
	assert.Contains(t, res.MissingRequiredFields, "net_asset_value or total_net_assets")
	assert.Zero(t, res.CompletenessScore)
}

func TestValidateMalformedFundCode(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.FundCode = "12345"
	res := v.Validate(report)

	assert.False(t, res.IsValid)
	require.Len(t, res.InvalidFields, 1)
	assert.Contains(t, res.InvalidFields[0], "6-digit")
}

func TestValidateTotalNetAssetsSatisfiesNAVRequirement(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.NetAssetValue = nil
	report.TotalNetAssets = dec("1000000")
	res := v.Validate(report)

	assert.True(t, res.IsValid)
	assert.Empty(t, res.MissingRequiredFields)
}

func TestValidateRangeChecks(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.AssetAllocations[0].Percentage = dec("1.2")
	report.TopHoldings[0].MarketValue = dec("-5")
	res := v.Validate(report)

	assert.False(t, res.IsValid)
	assert.Contains(t, res.InvalidFields, "asset_allocation[0] percentage outside [0,1]: 1.2")
	assert.Contains(t, res.InvalidFields, "top_holding[0] market value is negative")
}

func TestValidateAllocationSumDeviation(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.AssetAllocations = []model.AssetAllocation{
		{AssetType: "equity", Percentage: dec("0.5")},
		{AssetType: "bond", Percentage: dec("0.3")},
	}
	res := v.Validate(report)

	assert.False(t, res.IsValid)
	require.Len(t, res.InvalidFields, 1)
	assert.Contains(t, res.InvalidFields[0], "allocation sum deviates from 1.0")
}

func TestValidateAllocationSumWithinTolerance(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.AssetAllocations = []model.AssetAllocation{
		{AssetType: "equity", Percentage: dec("0.60")},
		{AssetType: "bond", Percentage: dec("0.37")},
	}
	res := v.Validate(report)

	assert.True(t, res.IsValid)
}

func TestValidateSingleAllocationCapWarns(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.AssetAllocations = []model.AssetAllocation{
		{AssetType: "equity", Percentage: dec("0.97")},
		{AssetType: "cash", Percentage: dec("0.03")},
	}
	res := v.Validate(report)

	// Above the cap is a warning, not a hard failure.
	assert.True(t, res.IsValid)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "single-line cap")
}

func TestValidateHoldingRanksMustBeContiguous(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.TopHoldings[1].Rank = 5
	res := v.Validate(report)

	assert.False(t, res.IsValid)
	require.Len(t, res.InvalidFields, 1)
	assert.Contains(t, res.InvalidFields[0], "ranks not contiguous")
}

func TestValidateHoldingsCap(t *testing.T) {
	v := NewValidator(Config{MaxHoldings: 2})
	report := completeReport()
	report.TopHoldings = append(report.TopHoldings,
		model.TopHolding{Rank: 3, SecurityName: "招商银行"})
	res := v.Validate(report)

	assert.False(t, res.IsValid)
	assert.Contains(t, res.InvalidFields[0], "exceed cap of 2")
}

func TestValidateIndustrySumCap(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.IndustryAllocations = []model.IndustryAllocation{
		{IndustryName: "制造业", Percentage: dec("0.6")},
		{IndustryName: "金融业", Percentage: dec("0.6")},
	}
	res := v.Validate(report)

	assert.False(t, res.IsValid)
	assert.Contains(t, res.InvalidFields[0], "industry allocation sum exceeds cap")
}

func TestValidateConcentrationWarning(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	report.TopHoldings = []model.TopHolding{
		{Rank: 1, SecurityName: "贵州茅台", Percentage: dec("0.6")},
	}
	res := v.Validate(report)

	assert.True(t, res.IsValid)
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "HHI") {
			found = true
		}
	}
	assert.True(t, found, "expected a concentration warning, got %v", res.Warnings)
}

func TestValidateCompletenessScoresPartials(t *testing.T) {
	v := NewValidator(Config{})
	report := &model.FundReport{
		FundCode: "110022",
		FundName: "易方达消费行业股票",
	}
	res := v.Validate(report)

	// Two of three required fields, no collections.
	assert.InDelta(t, 2.0/3.0, res.CompletenessScore, 1e-9)
}

func TestValidateNeverMutatesReport(t *testing.T) {
	v := NewValidator(Config{})
	report := completeReport()
	before := *report.AssetAllocations[0].Percentage

	v.Validate(report)

	assert.True(t, before.Equal(*report.AssetAllocations[0].Percentage))
	assert.Equal(t, model.ValidationStatus(""), report.ValidationStatus)
}
