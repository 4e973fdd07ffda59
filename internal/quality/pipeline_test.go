package quality

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundscope/disclosure-cli/internal/model"
)

func TestPipelineCleanReportPasses(t *testing.T) {
	p := NewPipeline(NewValidator(Config{}), NewRepairer(Config{}, nil))
	report := completeReport()

	warnings, repaired := p.Apply(context.Background(), report)

	assert.Empty(t, warnings)
	assert.False(t, repaired)
	assert.Equal(t, model.ValidationStatusPassed, report.ValidationStatus)
	assert.False(t, report.RepairAssisted)
	assert.InDelta(t, 1.0, report.DataQualityScore, 1e-9)
}

func TestPipelineRepairsAndRevalidates(t *testing.T) {
	p := NewPipeline(NewValidator(Config{}), NewRepairer(Config{}, nil))
	report := completeReport()
	// Sum 0.80 triggers the deviation rule; the rescale repair fixes it.
	report.AssetAllocations = []model.AssetAllocation{
		{AssetType: "equity", Percentage: dec("0.50")},
		{AssetType: "bond", Percentage: dec("0.30")},
	}

	warnings, repaired := p.Apply(context.Background(), report)

	assert.True(t, repaired)
	assert.True(t, report.RepairAssisted)
	assert.Equal(t, model.ValidationStatusPassed, report.ValidationStatus)

	found := false
	for _, w := range warnings {
		if w == "rescaled allocation percentages to sum to 1.0" {
			found = true
		}
	}
	assert.True(t, found, "expected a rescale note, got %v", warnings)
}

func TestPipelineUnrepairableIssuesFail(t *testing.T) {
	p := NewPipeline(NewValidator(Config{}), NewRepairer(Config{}, nil))
	report := &model.FundReport{FundName: "测试基金"}

	warnings, repaired := p.Apply(context.Background(), report)

	assert.False(t, repaired)
	assert.Equal(t, model.ValidationStatusFailed, report.ValidationStatus)
	assert.Contains(t, warnings, "missing required field: fund_code")
	assert.Contains(t, warnings, "missing required field: net_asset_value or total_net_assets")
}

func TestPipelineWithoutRepairerOnlyValidates(t *testing.T) {
	p := NewPipeline(NewValidator(Config{}), nil)
	report := completeReport()
	report.AssetAllocations = []model.AssetAllocation{
		{AssetType: "equity", Percentage: dec("0.50")},
	}

	_, repaired := p.Apply(context.Background(), report)

	assert.False(t, repaired)
	assert.Equal(t, model.ValidationStatusFailed, report.ValidationStatus)
	// The deviation survives untouched.
	require.NotNil(t, report.AssetAllocations[0].Percentage)
	assert.True(t, report.AssetAllocations[0].Percentage.Equal(decimal.RequireFromString("0.5")))
}

func TestPipelineScoreDiscountsFindings(t *testing.T) {
	p := NewPipeline(NewValidator(Config{}), nil)
	report := completeReport()
	report.FundCode = "bad"

	p.Apply(context.Background(), report)

	// Completeness drops to 2/3 + 0.3 collections, minus one invalid field.
	assert.InDelta(t, 2.0/3.0+0.3-0.08, report.DataQualityScore, 1e-9)
	assert.Equal(t, model.ValidationStatusFailed, report.ValidationStatus)
}

func TestPipelineWarningsOnlyStatus(t *testing.T) {
	p := NewPipeline(NewValidator(Config{}), nil)
	report := completeReport()
	report.TopHoldings = []model.TopHolding{
		{Rank: 1, SecurityName: "贵州茅台", Percentage: dec("0.6")},
	}

	warnings, _ := p.Apply(context.Background(), report)

	assert.Equal(t, model.ValidationStatusWarnings, report.ValidationStatus)
	require.NotEmpty(t, warnings)
}
