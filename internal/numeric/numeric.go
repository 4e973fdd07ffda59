// Package numeric provides locale-tolerant parsing of decimal amounts and
// percentages from fund-disclosure documents. Source cells mix full-width
// digits, CJK unit suffixes, currency markers, and placeholder dashes; every
// extractor funnels raw cell text through this package.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// placeholders are cell values that mean "no data", not zero.
var placeholders = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"—":    true,
	"―":    true,
	"n/a":  true,
	"na":   true,
	"无":    true,
	"不适用":  true,
	"null": true,
}

// unitScales maps amount-unit suffixes to the multiplier they imply.
// Order matters: longer suffixes must be checked before their substrings.
var unitScales = []struct {
	suffix string
	scale  int64 // power of ten
}{
	{"万元", 4},
	{"亿元", 8},
	{"万份", 4},
	{"亿份", 8},
	{"万", 4},
	{"亿", 8},
}

// currencyMarkers are stripped without affecting scale.
var currencyMarkers = []string{"人民币", "元", "份", "cny", "rmb", "¥", "￥", "$", "usd"}

// ParseDecimal parses a locale-formatted amount cell into a decimal. The
// second return is false when the cell is a placeholder or unparsable; callers
// record the field as absent rather than failing the row.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	cleaned, scale, ok := normalize(s)
	if !ok {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if scale != 0 {
		d = d.Shift(int32(scale))
	}
	return d, true
}

// ParsePercent parses a percentage cell into a fraction in [0,1].
// "12.3%" → 0.123. A bare value with no percent sign is treated as percent
// points when it exceeds 1 (holdings tables routinely omit the sign), and as
// an already-fractional value otherwise.
func ParsePercent(s string) (decimal.Decimal, bool) {
	folded := width.Fold.String(strings.TrimSpace(s))
	hadSign := strings.ContainsAny(folded, "%％") || strings.Contains(folded, "百分之")

	folded = strings.NewReplacer("%", "", "％", "", "百分之", "").Replace(folded)

	d, ok := ParseDecimal(folded)
	if !ok {
		return decimal.Zero, false
	}

	one := decimal.NewFromInt(1)
	if hadSign || d.GreaterThan(one) {
		d = d.Shift(-2)
	}
	return d, true
}

// normalize folds widths, lowercases, strips separators, currency markers and
// unit suffixes, and returns the bare numeric text plus any decimal scale
// implied by a unit suffix.
func normalize(s string) (string, int64, bool) {
	folded := width.Fold.String(strings.TrimSpace(s))
	lower := strings.ToLower(folded)
	if placeholders[lower] {
		return "", 0, false
	}

	// Parenthesized amounts are negatives in some statement layouts.
	negative := false
	if strings.HasPrefix(lower, "(") && strings.HasSuffix(lower, ")") {
		negative = true
		lower = strings.TrimSuffix(strings.TrimPrefix(lower, "("), ")")
	}

	var scale int64
	for _, u := range unitScales {
		if strings.Contains(lower, u.suffix) {
			scale = u.scale
			lower = strings.ReplaceAll(lower, u.suffix, "")
			break
		}
	}
	for _, m := range currencyMarkers {
		lower = strings.ReplaceAll(lower, m, "")
	}

	lower = strings.NewReplacer(",", "", "，", "", " ", "", " ", "").Replace(lower)
	lower = strings.TrimSpace(lower)
	if lower == "" || placeholders[lower] {
		return "", 0, false
	}
	if negative {
		lower = "-" + lower
	}
	return lower, scale, true
}
