package structural

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Section identifiers for tabular report data.
const (
	SectionAssetAllocation    = "asset_allocation"
	SectionTopHoldings        = "top_holdings"
	SectionIndustryAllocation = "industry_allocation"
)

// Column roles inferred from header-cell text.
const (
	ColName    = "name"
	ColCode    = "code"
	ColValue   = "value"
	ColPercent = "percent"
	ColShares  = "shares"
	ColRank    = "rank"
)

// Config holds the keyword tables driving structural extraction. The tables
// are data, not code: filings drift structurally template by template, and
// tuning happens in a yaml file rather than a release.
type Config struct {
	// LabelSynonyms maps scalar report fields to the label texts that
	// precede their value in the document.
	LabelSynonyms map[string][]string `yaml:"label_synonyms"`

	// SectionKeywords maps each table section to the vocabulary scored
	// against table (and nearby heading) text during classification.
	SectionKeywords map[string][]string `yaml:"section_keywords"`

	// ColumnKeywords maps column roles to header-cell keyword families.
	ColumnKeywords map[string][]string `yaml:"column_keywords"`

	// SkipRowTokens marks totals/subtotal rows that must not be parsed as
	// data (for example 合计 and 小计 lines).
	SkipRowTokens []string `yaml:"skip_row_tokens"`

	// MaxHoldings caps the top-holdings table. Default: 10.
	MaxHoldings int `yaml:"max_holdings"`
}

// DefaultConfig returns the built-in keyword tables, tuned for CN fund
// filings with EN fallbacks.
func DefaultConfig() Config {
	return Config{
		LabelSynonyms: map[string][]string{
			"fund_code":        {"基金代码", "基金主代码", "交易代码", "fund code"},
			"fund_name":        {"基金名称", "基金全称", "基金简称", "fund name"},
			"fund_manager":     {"基金管理人", "管理人名称", "fund manager"},
			"custodian":        {"基金托管人", "托管人名称", "custodian"},
			"net_asset_value":  {"基金资产净值", "资产净值", "net asset value"},
			"total_net_assets": {"期末基金资产净值", "资产总值", "total net assets"},
			"total_shares":     {"基金份额总额", "总份额", "total shares"},
			"unit_nav":         {"基金份额净值", "单位净值", "unit nav"},
			"accumulated_nav":  {"累计净值", "份额累计净值", "accumulated nav"},
		},
		SectionKeywords: map[string][]string{
			SectionAssetAllocation: {
				"资产组合", "资产配置", "基金资产组合情况", "大类资产",
				"asset allocation", "portfolio composition",
			},
			SectionTopHoldings: {
				"股票投资明细", "前十名", "重仓股", "十大", "主要投资",
				"top holdings", "top ten",
			},
			SectionIndustryAllocation: {
				"行业分类", "行业分布", "行业投资", "按行业",
				"industry allocation", "sector breakdown",
			},
		},
		ColumnKeywords: map[string][]string{
			ColRank:    {"序号", "排名", "rank", "no."},
			ColCode:    {"代码", "股票代码", "证券代码", "code", "symbol"},
			ColName:    {"名称", "项目", "股票名称", "证券名称", "行业", "类别", "name", "item", "industry"},
			ColShares:  {"数量", "股数", "份额", "持仓量", "shares", "quantity"},
			ColValue:   {"公允价值", "市值", "金额", "价值", "fair value", "market value", "amount"},
			ColPercent: {"比例", "占比", "占基金资产净值比例", "percent", "ratio", "%"},
		},
		SkipRowTokens: []string{"合计", "小计", "总计", "total", "subtotal"},
		MaxHoldings:   10,
	}
}

// LoadConfig reads keyword-table overrides from a yaml file on top of the
// defaults. Omitted tables keep their built-in values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "structural: read keywords file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "structural: parse keywords file %s", path)
	}
	if cfg.MaxHoldings <= 0 {
		cfg.MaxHoldings = 10
	}

	zap.L().Info("structural: loaded keyword overrides", zap.String("path", path))
	return cfg, nil
}
