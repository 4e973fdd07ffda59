package structural

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// sectionTable is one <table> classified into a report section, with the
// scoring trail explaining why.
type sectionTable struct {
	section string
	table   *goquery.Selection
	score   int
	trail   string
}

// classifyTables scores every table in the document against each section's
// keyword set and assigns the highest-scoring unclassified table per section.
// The returned trail lines record every decision for the warnings channel.
func classifyTables(doc *goquery.Document, cfg Config) (map[string]*goquery.Selection, []string) {
	type candidate struct {
		index   int
		sel     *goquery.Selection
		context string // table text plus nearest preceding heading
	}

	var candidates []candidate
	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		ctx := collapseSpace(sel.Text())
		if heading := precedingHeading(sel); heading != "" {
			ctx = heading + " " + ctx
		}
		candidates = append(candidates, candidate{index: i, sel: sel, context: strings.ToLower(ctx)})
	})

	assigned := make(map[string]*goquery.Selection)
	taken := make(map[int]bool)
	var trail []string

	// Holdings keywords are the most specific, then industry, then asset
	// allocation; scoring in that order keeps a holdings table from being
	// swallowed by the broader asset vocabulary.
	for _, section := range []string{SectionTopHoldings, SectionIndustryAllocation, SectionAssetAllocation} {
		keywords := cfg.SectionKeywords[section]
		best, bestScore := -1, 0
		for _, c := range candidates {
			if taken[c.index] {
				continue
			}
			score := keywordHits(c.context, keywords)
			if score > bestScore {
				best, bestScore = c.index, score
			}
		}
		if best < 0 {
			trail = append(trail, fmt.Sprintf("no table matched %s keywords", section))
			continue
		}
		taken[best] = true
		assigned[section] = candidates[best].sel
		trail = append(trail, fmt.Sprintf("table %d classified as %s (score %d)", best, section, bestScore))
	}

	zap.L().Debug("structural: table classification",
		zap.Int("tables", len(candidates)),
		zap.Int("sections_matched", len(assigned)),
	)
	return assigned, trail
}

// precedingHeading returns the text of the nearest heading-like element
// before the table, so a caption such as "报告期末基金资产组合情况" counts
// toward classification even when the table body is terse.
func precedingHeading(table *goquery.Selection) string {
	for _, selector := range []string{"h1,h2,h3,h4,h5", "p,div,caption"} {
		prev := table.PrevAllFiltered(selector).First()
		if prev.Length() > 0 {
			text := collapseSpace(prev.Text())
			if text != "" && len(text) < 200 {
				return text
			}
		}
	}
	return ""
}

func keywordHits(text string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			hits++
		}
	}
	return hits
}

// inferColumns maps cell index to column role by matching header-cell text
// against the role keyword families. It scans the first few rows for a
// plausible header row (two or more role matches). The second return is
// false when no header row was identified and a positional layout must be
// assumed.
func inferColumns(table *goquery.Selection, cfg Config) (map[int]string, bool) {
	rows := table.Find("tr")
	limit := rows.Length()
	if limit > 3 {
		limit = 3
	}

	for i := 0; i < limit; i++ {
		cells := rowCells(rows.Eq(i))
		roles := make(map[int]string, len(cells))
		matches := 0
		for idx, cell := range cells {
			if role, ok := matchColumnRole(cell, cfg); ok {
				roles[idx] = role
				matches++
			}
		}
		if matches >= 2 {
			return roles, true
		}
	}
	return nil, false
}

// matchColumnRole resolves one header cell to a role. Percent beats value
// when both match: "占净值比例(%)" style headers contain value words too.
func matchColumnRole(cell string, cfg Config) (string, bool) {
	lower := strings.ToLower(collapseSpace(cell))
	if lower == "" {
		return "", false
	}
	for _, role := range []string{ColPercent, ColShares, ColValue, ColCode, ColRank, ColName} {
		for _, kw := range cfg.ColumnKeywords[role] {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return role, true
			}
		}
	}
	return "", false
}

// positionalColumns is the fixed last-resort layout per section when no
// header row is identifiable.
func positionalColumns(section string) map[int]string {
	switch section {
	case SectionTopHoldings:
		return map[int]string{0: ColRank, 1: ColCode, 2: ColName, 3: ColShares, 4: ColValue, 5: ColPercent}
	default:
		return map[int]string{0: ColName, 1: ColValue, 2: ColPercent}
	}
}

// rowCells extracts trimmed cell texts from a table row.
func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find("td,th").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, collapseSpace(c.Text()))
	})
	return cells
}

// isSkippableRow reports whether a data row is a totals/subtotal line or a
// repeated header that must not be parsed as data.
func isSkippableRow(cells []string, cfg Config) bool {
	first := firstNonEmpty(cells)
	if first == "" {
		return true
	}
	lower := strings.ToLower(first)
	for _, tok := range cfg.SkipRowTokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	// Header-like: the first classifiable cell is itself a column label.
	if _, ok := matchColumnRole(first, cfg); ok {
		return true
	}
	return false
}

func firstNonEmpty(cells []string) string {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
