package quality

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
	"github.com/fundscope/disclosure-cli/internal/numeric"
	"github.com/fundscope/disclosure-cli/internal/resilience"
	"github.com/fundscope/disclosure-cli/pkg/oracle"
)

// Repairer applies deterministic corrections to common defects and may
// consult a pluggable oracle for issues the rules cannot resolve. Oracle
// output is untrusted: it may only fill missing or anomalous fields, never
// silently discard data.
type Repairer struct {
	cfg     Config
	oracle  oracle.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewRepairer creates a Repairer. oc may be nil for deterministic-only
// operation.
func NewRepairer(cfg Config, oc oracle.Client) *Repairer {
	return &Repairer{
		cfg:     cfg.withDefaults(),
		oracle:  oc,
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
	}
}

// Repair mutates report in place. Returns whether any deterministic repair
// was applied, whether the oracle contributed, and notes for the warnings
// trail.
func (r *Repairer) Repair(ctx context.Context, report *model.FundReport, issues []string) (deterministic, oracleAssisted bool, notes []string) {
	if r.derivePercentages(report) {
		deterministic = true
		notes = append(notes, "derived missing allocation percentages from market values")
	}
	if r.rescaleAllocations(report) {
		deterministic = true
		notes = append(notes, "rescaled allocation percentages to sum to 1.0")
	}

	if r.oracle == nil || len(issues) == 0 {
		return deterministic, false, notes
	}

	resp, err := r.consultOracle(ctx, report, issues)
	if err != nil {
		// Degrades to no oracle repair; never a parse failure.
		zap.L().Warn("quality: repair oracle unavailable", zap.Error(err))
		notes = append(notes, "repair oracle unavailable: "+err.Error())
		return deterministic, false, notes
	}

	applied := 0
	for field, value := range resp.ProposedCorrections {
		if r.applyCorrection(report, field, value) {
			applied++
			notes = append(notes, fmt.Sprintf("oracle correction accepted for %s", field))
		} else {
			notes = append(notes, fmt.Sprintf("oracle correction rejected for %s", field))
		}
	}
	return deterministic, applied > 0, notes
}

// rescaleAllocations rescales every defined allocation percentage by 1/S
// when the sum S deviates from 1.0 beyond tolerance. Applying it twice is a
// no-op: after the first pass the sum is already ~1.0.
func (r *Repairer) rescaleAllocations(report *model.FundReport) bool {
	sum, ok := allocationSum(report.AssetAllocations)
	if !ok || sum <= 0 {
		return false
	}
	dev := sum - 1.0
	if dev < 0 {
		dev = -dev
	}
	if dev <= r.cfg.AllocationSumTolerance {
		return false
	}

	factor := decimal.NewFromInt(1).Div(decimal.NewFromFloat(sum))
	for i := range report.AssetAllocations {
		if p := report.AssetAllocations[i].Percentage; p != nil {
			scaled := p.Mul(factor).Round(6)
			report.AssetAllocations[i].Percentage = &scaled
		}
	}
	zap.L().Debug("quality: rescaled allocation percentages",
		zap.Float64("original_sum", sum),
	)
	return true
}

// derivePercentages fills a missing allocation percentage from its market
// value and the report total (net asset value, or the sum of line values
// when the total is itself missing).
func (r *Repairer) derivePercentages(report *model.FundReport) bool {
	total := decimal.Zero
	if report.NetAssetValue != nil && report.NetAssetValue.IsPositive() {
		total = *report.NetAssetValue
	} else {
		for _, a := range report.AssetAllocations {
			if a.MarketValue != nil {
				total = total.Add(*a.MarketValue)
			}
		}
	}
	if !total.IsPositive() {
		return false
	}

	changed := false
	for i := range report.AssetAllocations {
		a := &report.AssetAllocations[i]
		if a.Percentage == nil && a.MarketValue != nil {
			pct := a.MarketValue.Div(total).Round(6)
			a.Percentage = &pct
			changed = true
		}
	}
	return changed
}

func (r *Repairer) consultOracle(ctx context.Context, report *model.FundReport, issues []string) (*oracle.RepairResponse, error) {
	records, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	req := oracle.RepairRequest{
		IssueDescriptions: issues,
		OffendingRecords:  records,
	}

	return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*oracle.RepairResponse, error) {
		return resilience.ExecuteVal(ctx, r.breaker, func(ctx context.Context) (*oracle.RepairResponse, error) {
			return r.oracle.ProposeRepairs(ctx, req)
		})
	})
}

// applyCorrection accepts an oracle proposal only when the target field is
// empty or anomalous and the value passes the same coercion rules the
// strategies use.
func (r *Repairer) applyCorrection(report *model.FundReport, field, value string) bool {
	switch field {
	case "fund_code":
		if report.FundCode != "" || !model.IsFundCode(value) {
			return false
		}
		report.FundCode = value
	case "fund_name":
		if report.FundName != "" || value == "" {
			return false
		}
		report.FundName = value
	case "fund_manager":
		if report.FundManager != "" || value == "" {
			return false
		}
		report.FundManager = value
	case "custodian":
		if report.Custodian != "" || value == "" {
			return false
		}
		report.Custodian = value
	case "net_asset_value":
		return fillDecimal(&report.NetAssetValue, value)
	case "total_net_assets":
		return fillDecimal(&report.TotalNetAssets, value)
	case "total_shares":
		return fillDecimal(&report.TotalShares, value)
	case "unit_nav":
		return fillDecimal(&report.UnitNAV, value)
	case "accumulated_nav":
		return fillDecimal(&report.AccumulatedNAV, value)
	default:
		return false
	}
	return true
}

// fillDecimal sets dst only when currently nil and the value parses to a
// non-negative decimal.
func fillDecimal(dst **decimal.Decimal, value string) bool {
	if *dst != nil {
		return false
	}
	d, ok := numeric.ParseDecimal(value)
	if !ok || d.IsNegative() {
		return false
	}
	*dst = &d
	return true
}
