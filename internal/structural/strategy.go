// Package structural implements the HTML-table parsing strategy for legacy
// plain-HTML filings. It locates report sections by keyword scoring, infers
// column roles from header text, and extracts rows into the domain model.
// The same strategy is the fallback when XBRL parsing fails, so it succeeds
// as much as possible: partial extraction is a success with warnings.
package structural

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fundscope/disclosure-cli/internal/model"
	"github.com/fundscope/disclosure-cli/internal/numeric"
)

// StrategyName is the provenance tag this strategy writes into results.
const StrategyName = "structural_html"

// Confidence assigned to structurally-extracted reports. Heuristic table
// classification is inherently lower fidelity than taxonomy-mapped facts.
const structuralConfidence = 0.7

// Strategy parses legacy HTML filings. Stateless and safe for concurrent use.
type Strategy struct {
	cfg Config
}

// New creates a structural Strategy. Empty config tables fall back to the
// built-in keyword tables.
func New(cfg Config) *Strategy {
	def := DefaultConfig()
	if len(cfg.LabelSynonyms) == 0 {
		cfg.LabelSynonyms = def.LabelSynonyms
	}
	if len(cfg.SectionKeywords) == 0 {
		cfg.SectionKeywords = def.SectionKeywords
	}
	if len(cfg.ColumnKeywords) == 0 {
		cfg.ColumnKeywords = def.ColumnKeywords
	}
	if len(cfg.SkipRowTokens) == 0 {
		cfg.SkipRowTokens = def.SkipRowTokens
	}
	if cfg.MaxHoldings <= 0 {
		cfg.MaxHoldings = def.MaxHoldings
	}
	return &Strategy{cfg: cfg}
}

// Name implements parser.Strategy.
func (s *Strategy) Name() string { return StrategyName }

// Parse extracts a FundReport from HTML content. It fails only when nothing
// recognizable was found at all; otherwise missing sections become warnings.
func (s *Strategy) Parse(ctx context.Context, content string, path string) model.ParseResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return model.Failed(StrategyName, "unreadable document: "+err.Error())
	}

	report := &model.FundReport{
		ParsingMethod:     StrategyName,
		ParsingConfidence: structuralConfidence,
	}
	var warnings []string

	scalarFound := s.extractScalars(doc, report, &warnings)

	sections, trail := classifyTables(doc, s.cfg)
	warnings = append(warnings, trail...)

	if tbl, ok := sections[SectionAssetAllocation]; ok {
		report.AssetAllocations = s.parseAssetAllocation(tbl, &warnings)
	}
	if tbl, ok := sections[SectionTopHoldings]; ok {
		report.TopHoldings = s.parseTopHoldings(tbl, &warnings)
	}
	if tbl, ok := sections[SectionIndustryAllocation]; ok {
		report.IndustryAllocations = s.parseIndustryAllocation(tbl, &warnings)
	}

	collectionsFound := len(report.AssetAllocations) + len(report.TopHoldings) + len(report.IndustryAllocations)
	if scalarFound == 0 && collectionsFound == 0 {
		return model.Failed(StrategyName, "no recognizable report sections found")
	}

	inferReportPeriod(doc, report)

	zap.L().Debug("structural: parse complete",
		zap.Int("scalar_fields", scalarFound),
		zap.Int("allocations", len(report.AssetAllocations)),
		zap.Int("holdings", len(report.TopHoldings)),
		zap.Int("industries", len(report.IndustryAllocations)),
	)

	return model.ParseResult{
		Success:      true,
		Report:       report,
		Warnings:     warnings,
		StrategyUsed: StrategyName,
	}
}

var sixDigits = regexp.MustCompile(`\d{6}`)

// extractScalars scans label cells for each scalar field's synonyms and reads
// the nearest following value cell (or the remainder of the same cell after a
// colon). Returns how many fields were populated.
func (s *Strategy) extractScalars(doc *goquery.Document, report *model.FundReport, warnings *[]string) int {
	values := make(map[string]string)

	doc.Find("td,th,p,span,div,li").Each(func(_ int, sel *goquery.Selection) {
		// Skip container nodes; labels live in leaf-ish elements.
		if sel.Children().Length() > 2 {
			return
		}
		text := collapseSpace(sel.Text())
		if text == "" || len(text) > 120 {
			return
		}
		for field, labels := range s.cfg.LabelSynonyms {
			if _, done := values[field]; done {
				continue
			}
			label, ok := matchLabel(text, labels)
			if !ok {
				continue
			}
			if v := valueAfterLabel(text, label); v != "" {
				values[field] = v
				continue
			}
			// Label-only cell: the value is in the next sibling cell.
			if v := collapseSpace(sel.Next().Text()); v != "" {
				values[field] = v
			}
		}
	})

	found := 0
	for field, raw := range values {
		if s.assignScalar(report, field, raw) {
			found++
		} else {
			*warnings = append(*warnings, "unparsable value for "+field+": "+raw)
		}
	}
	return found
}

func matchLabel(text string, labels []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, l := range labels {
		if strings.Contains(lower, strings.ToLower(l)) {
			return l, true
		}
	}
	return "", false
}

// valueAfterLabel extracts "001234" from "基金代码: 001234" style cells.
func valueAfterLabel(text, label string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(label))
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(label):]
	rest = strings.TrimLeft(rest, " :：\t")
	return collapseSpace(rest)
}

func (s *Strategy) assignScalar(report *model.FundReport, field, raw string) bool {
	switch field {
	case "fund_code":
		code := sixDigits.FindString(raw)
		if code == "" {
			return false
		}
		report.FundCode = code
	case "fund_name":
		report.FundName = raw
	case "fund_manager":
		report.FundManager = raw
	case "custodian":
		report.Custodian = raw
	case "net_asset_value":
		return setDecimalField(&report.NetAssetValue, raw)
	case "total_net_assets":
		return setDecimalField(&report.TotalNetAssets, raw)
	case "total_shares":
		return setDecimalField(&report.TotalShares, raw)
	case "unit_nav":
		return setDecimalField(&report.UnitNAV, raw)
	case "accumulated_nav":
		return setDecimalField(&report.AccumulatedNAV, raw)
	default:
		return false
	}
	return true
}

func setDecimalField(dst **decimal.Decimal, raw string) bool {
	d, ok := numeric.ParseDecimal(raw)
	if !ok {
		return false
	}
	*dst = &d
	return true
}

// parseAssetAllocation extracts asset-class rows from a classified table.
func (s *Strategy) parseAssetAllocation(table *goquery.Selection, warnings *[]string) []model.AssetAllocation {
	roles, headerFound := inferColumns(table, s.cfg)
	if !headerFound {
		roles = positionalColumns(SectionAssetAllocation)
		*warnings = append(*warnings, "asset allocation table has no identifiable header row, positional layout assumed")
	}

	var out []model.AssetAllocation
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if isSkippableRow(cells, s.cfg) {
			return
		}
		name := cellForRole(cells, roles, ColName)
		if name == "" {
			return
		}
		alloc := model.AssetAllocation{AssetType: name}
		if v, ok := numeric.ParseDecimal(cellForRole(cells, roles, ColValue)); ok {
			alloc.MarketValue = &v
		}
		if p, ok := numeric.ParsePercent(cellForRole(cells, roles, ColPercent)); ok {
			alloc.Percentage = &p
		}
		if alloc.MarketValue == nil && alloc.Percentage == nil {
			return
		}
		out = append(out, alloc)
	})
	return out
}

// parseTopHoldings extracts ranked security rows, capped at MaxHoldings.
// Rank is assigned by row order rather than any printed rank column, which
// guarantees contiguity from 1.
func (s *Strategy) parseTopHoldings(table *goquery.Selection, warnings *[]string) []model.TopHolding {
	roles, headerFound := inferColumns(table, s.cfg)
	if !headerFound {
		roles = positionalColumns(SectionTopHoldings)
		*warnings = append(*warnings, "holdings table has no identifiable header row, positional layout assumed")
	}

	var out []model.TopHolding
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(out) >= s.cfg.MaxHoldings {
			*warnings = append(*warnings, "holdings table exceeds cap, extra rows ignored")
			return false
		}
		cells := rowCells(row)
		if isSkippableRow(cells, s.cfg) {
			return true
		}
		name := cellForRole(cells, roles, ColName)
		code := cellForRole(cells, roles, ColCode)
		if name == "" && code == "" {
			return true
		}
		h := model.TopHolding{
			Rank:         len(out) + 1,
			SecurityName: name,
			SecurityCode: code,
		}
		if v, ok := numeric.ParseDecimal(cellForRole(cells, roles, ColShares)); ok {
			h.Shares = &v
		}
		if v, ok := numeric.ParseDecimal(cellForRole(cells, roles, ColValue)); ok {
			h.MarketValue = &v
		}
		if p, ok := numeric.ParsePercent(cellForRole(cells, roles, ColPercent)); ok {
			h.Percentage = &p
		}
		out = append(out, h)
		return true
	})
	return out
}

// parseIndustryAllocation extracts industry rows from a classified table.
func (s *Strategy) parseIndustryAllocation(table *goquery.Selection, warnings *[]string) []model.IndustryAllocation {
	roles, headerFound := inferColumns(table, s.cfg)
	if !headerFound {
		roles = positionalColumns(SectionIndustryAllocation)
		*warnings = append(*warnings, "industry table has no identifiable header row, positional layout assumed")
	}

	var out []model.IndustryAllocation
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if isSkippableRow(cells, s.cfg) {
			return
		}
		name := cellForRole(cells, roles, ColName)
		if name == "" {
			return
		}
		ind := model.IndustryAllocation{IndustryName: name}
		if v, ok := numeric.ParseDecimal(cellForRole(cells, roles, ColValue)); ok {
			ind.MarketValue = &v
		}
		if p, ok := numeric.ParsePercent(cellForRole(cells, roles, ColPercent)); ok {
			ind.Percentage = &p
		}
		if ind.MarketValue == nil && ind.Percentage == nil {
			return
		}
		out = append(out, ind)
	})
	return out
}

// cellForRole returns the lowest-indexed cell assigned to role, keeping row
// parsing deterministic when two header cells matched the same family.
func cellForRole(cells []string, roles map[int]string, role string) string {
	for idx := 0; idx < len(cells); idx++ {
		if roles[idx] == role {
			return cells[idx]
		}
	}
	return ""
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// inferReportPeriod fills report type and year from document title text.
func inferReportPeriod(doc *goquery.Document, report *model.FundReport) {
	title := collapseSpace(doc.Find("title,h1,h2").Text())
	if title == "" {
		title = collapseSpace(doc.Find("body").Text())
		if len(title) > 500 {
			title = title[:500]
		}
	}

	if report.ReportType == "" {
		switch {
		case strings.Contains(title, "半年度"):
			report.ReportType = model.ReportTypeSemiAnnual
		case strings.Contains(title, "季度"), strings.Contains(title, "季报"):
			report.ReportType = model.ReportTypeQuarterly
		case strings.Contains(title, "年度"), strings.Contains(title, "年报"),
			strings.Contains(strings.ToLower(title), "annual"):
			report.ReportType = model.ReportTypeAnnual
		}
	}
	if report.ReportYear == 0 {
		if y := yearPattern.FindString(title); y != "" {
			var year int
			for _, r := range y {
				year = year*10 + int(r-'0')
			}
			report.ReportYear = year
		}
	}
}
