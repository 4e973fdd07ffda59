package classify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundscope/disclosure-cli/internal/model"
)

const xbrlSample = `<?xml version="1.0"?>
<xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">
  <link:schemaRef xlink:href="http://taxonomy.example/fund-2023.xsd"/>
  <xbrli:context id="c1"><xbrli:period/></xbrli:context>
  <FundCode contextRef="c1">001234</FundCode>
</xbrl>`

const inlineSample = `<html xmlns:ix="http://www.xbrl.org/2013/inlineXBRL">
<body><div style="display:none"><ix:header><ix:hidden></ix:hidden></ix:header></div>
<table><tr><td><ix:nonFraction name="fund:NetAssetValue" contextRef="c1">1,234.56</ix:nonFraction></td></tr></table>
</body></html>`

const htmlSample = `<html><body>
<h1>某某混合型证券投资基金 2023 年度报告</h1>
<table><tr><td>基金代码</td><td>001234</td></tr>
<tr><td>基金资产净值</td><td>1,234,567.89元</td></tr></table>
</body></html>`

func TestClassifyXBRL(t *testing.T) {
	c := New(Config{})
	v := c.Classify(xbrlSample, "")
	assert.Equal(t, model.FormatXBRL, v.Format)
	assert.GreaterOrEqual(t, v.Confidence[model.FormatXBRL], 0.5)
}

func TestClassifyInlineXBRL(t *testing.T) {
	c := New(Config{})
	v := c.Classify(inlineSample, "")
	assert.Equal(t, model.FormatInlineXBRL, v.Format)
	assert.GreaterOrEqual(t, v.Confidence[model.FormatInlineXBRL], 0.5)
}

func TestClassifyHTML(t *testing.T) {
	c := New(Config{})
	v := c.Classify(htmlSample, "")
	assert.Equal(t, model.FormatHTML, v.Format)
}

func TestClassifyHTMLRequiresDomainKeywords(t *testing.T) {
	c := New(Config{})
	// Well-formed HTML but nothing fund-related.
	v := c.Classify(`<html><body><table><td>weather report</td></table></body></html>`, "")
	assert.Equal(t, model.FormatUnknown, v.Format)
}

func TestClassifyUnknownGarbage(t *testing.T) {
	c := New(Config{})
	v := c.Classify(strings.Repeat("\x7f\x03garbage", 3000), "")
	assert.Equal(t, model.FormatUnknown, v.Format)
	assert.Equal(t, 0.0, v.Confidence[model.FormatXBRL])
}

func TestClassifyExtensionHint(t *testing.T) {
	c := New(Config{})
	v := c.Classify("no markers here at all", "/data/filing.xml")
	assert.Equal(t, model.FormatXBRL, v.Format)

	v = c.Classify("no markers here at all", "/data/filing.htm")
	assert.Equal(t, model.FormatHTML, v.Format)

	v = c.Classify("no markers here at all", "/data/filing.bin")
	assert.Equal(t, model.FormatUnknown, v.Format)
}

func TestClassifyIdempotent(t *testing.T) {
	c := New(Config{})
	first := c.Classify(htmlSample, "/x/report.html")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(htmlSample, "/x/report.html"))
	}
}

func TestClassifyEmpty(t *testing.T) {
	c := New(Config{})
	v := c.Classify("", "")
	assert.Equal(t, model.FormatUnknown, v.Format)
}

func TestClassifySampleBound(t *testing.T) {
	// Markers beyond the sample window must not influence the verdict.
	padded := strings.Repeat("x", defaultSampleBytes) + xbrlSample
	c := New(Config{})
	v := c.Classify(padded, "")
	assert.Equal(t, model.FormatUnknown, v.Format)
}

func TestLoadConfigOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_domain_hits: 1\ndomain_keywords:\n  - pension\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MinDomainHits)
	assert.Equal(t, []string{"pension"}, cfg.DomainKeywords)
	// Untouched sets keep defaults.
	assert.NotEmpty(t, cfg.XBRLMarkers)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/keywords.yaml")
	assert.Error(t, err)
}
