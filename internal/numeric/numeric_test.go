package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", "123.45", "123.45", true},
		{"thousands separators", "1,234,567.89", "1234567.89", true},
		{"cjk separators", "1，234，567", "1234567", true},
		{"yuan suffix", "123.45元", "123.45", true},
		{"wan yuan scale", "1.5万元", "15000", true},
		{"yi yuan scale", "2.3亿元", "230000000", true},
		{"wan shares", "12万份", "120000", true},
		{"currency prefix", "¥1,000.00", "1000", true},
		{"rmb marker", "RMB 500", "500", true},
		{"fullwidth digits", "１２３．４５", "123.45", true},
		{"parenthesized negative", "(1,000)", "-1000", true},
		{"negative sign", "-42.5", "-42.5", true},
		{"dash placeholder", "-", "", false},
		{"em dash placeholder", "—", "", false},
		{"double dash", "--", "", false},
		{"na placeholder", "N/A", "", false},
		{"cjk placeholder", "不适用", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"garbage", "abc", "", false},
		{"mixed garbage", "12x34", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				want, err := decimal.NewFromString(tt.want)
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "want %s got %s", want, got)
			}
		})
	}
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"percent sign", "12.3%", "0.123", true},
		{"fullwidth percent", "45．6％", "0.456", true},
		{"bare percent points", "12.3", "0.123", true},
		{"bare fraction", "0.123", "0.123", true},
		{"exactly one", "1", "1", true},
		{"hundred percent", "100%", "1", true},
		{"with separators", "1,2.5%", "0.125", true},
		{"baifenzhi prefix", "百分之12", "0.12", true},
		{"dash placeholder", "--", "", false},
		{"garbage", "??", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePercent(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				want, err := decimal.NewFromString(tt.want)
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "want %s got %s", want, got)
			}
		})
	}
}

func TestParseDecimalNeverPanics(t *testing.T) {
	inputs := []string{"", "%%%%", "((()))", "万亿元", "\x00\x01\x02", "1e999万"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, _ = ParseDecimal(in)
			_, _ = ParsePercent(in)
		})
	}
}
