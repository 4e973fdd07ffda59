package quality

import (
	"context"

	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
)

// Pipeline runs validation, conditional repair, and re-validation over a
// freshly parsed report, then stamps quality provenance onto it. It
// implements the facade's quality hook.
type Pipeline struct {
	validator *Validator
	repairer  *Repairer
}

// NewPipeline creates a quality Pipeline. repairer may be nil to validate
// without repairing.
func NewPipeline(validator *Validator, repairer *Repairer) *Pipeline {
	return &Pipeline{validator: validator, repairer: repairer}
}

// Apply validates the report, repairs it when issues were found, and
// re-validates after repair so the recorded scores reflect the final state.
func (p *Pipeline) Apply(ctx context.Context, report *model.FundReport) ([]string, bool) {
	res := p.validator.Validate(report)
	warnings := append([]string(nil), res.Warnings...)

	repaired := false
	if p.repairer != nil {
		if issues := res.Issues(); len(issues) > 0 || hasRepairableWarnings(res) {
			deterministic, oracleAssisted, notes := p.repairer.Repair(ctx, report, issues)
			warnings = append(warnings, notes...)
			repaired = deterministic || oracleAssisted
			if repaired {
				report.RepairAssisted = true
				res = p.validator.Validate(report)
			}
		}
	}

	for _, issue := range res.Issues() {
		warnings = append(warnings, issue)
	}

	report.DataQualityScore = qualityScore(res)
	report.ValidationStatus = statusFor(res)

	zap.L().Debug("quality: pipeline applied",
		zap.Float64("score", report.DataQualityScore),
		zap.String("status", string(report.ValidationStatus)),
		zap.Bool("repaired", repaired),
	)
	return warnings, repaired
}

// hasRepairableWarnings widens the repair trigger to warning-level findings
// the deterministic rules know how to fix.
func hasRepairableWarnings(res model.ValidationResult) bool {
	return len(res.Warnings) > 0
}

// qualityScore folds completeness, accuracy, and consistency into one 0..1
// value: completeness carries most weight, each invalid field and each
// warning discounts the rest.
func qualityScore(res model.ValidationResult) float64 {
	score := res.CompletenessScore
	score -= 0.08 * float64(len(res.InvalidFields))
	score -= 0.02 * float64(len(res.Warnings))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func statusFor(res model.ValidationResult) model.ValidationStatus {
	switch {
	case !res.IsValid:
		return model.ValidationStatusFailed
	case len(res.Warnings) > 0:
		return model.ValidationStatusWarnings
	default:
		return model.ValidationStatusPassed
	}
}
