package inlinexbrl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inlineDoc = `<html xmlns:ix="http://www.xbrl.org/2013/inlineXBRL">
<head><title>基金年度报告</title></head>
<body>
<div style="display:none">
  <ix:header>
    <ix:references>
      <link:schemaRef xlink:type="simple" xlink:href="http://xbrl.csrc.gov.cn/fund-2023.xsd"/>
    </ix:references>
  </ix:header>
</div>
<p>基金代码: <ix:nonNumeric name="cn:FundCode" contextRef="c1">001234</ix:nonNumeric></p>
<table>
<tr><td>资产净值</td>
<td><ix:nonFraction name="cn:NetAssetValue" contextRef="c1" unitRef="cny" scale="0">1,234,567.89</ix:nonFraction></td></tr>
</table>
</body></html>`

func TestExtractInlineFacts(t *testing.T) {
	out, ok := Extract(inlineDoc)

	require.True(t, ok)
	assert.Contains(t, out, "<xbrl")
	assert.Contains(t, out, `href="http://xbrl.csrc.gov.cn/fund-2023.xsd"`)
	assert.Contains(t, out, ">001234<")
	assert.Contains(t, out, ">1,234,567.89<")
	assert.Contains(t, out, `contextRef="c1"`)
}

func TestExtractNoInlineFacts(t *testing.T) {
	out, ok := Extract(`<html><body><table><td>plain filing</td></table></body></html>`)
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestExtractEmptyInput(t *testing.T) {
	_, ok := Extract("")
	assert.False(t, ok)
}

func TestExtractGarbageInput(t *testing.T) {
	_, ok := Extract(strings.Repeat("\x00\x01binary", 1000))
	assert.False(t, ok)
}

func TestExtractFactWithoutName(t *testing.T) {
	doc := `<html xmlns:ix="x"><body><ix:nonFraction contextRef="c1">42</ix:nonFraction></body></html>`
	_, ok := Extract(doc)
	assert.False(t, ok)
}

func TestExtractEscapesValues(t *testing.T) {
	doc := `<html xmlns:ix="x"><body><ix:nonNumeric name="cn:FundName" contextRef="c1">A &amp; B &lt;Fund&gt;</ix:nonNumeric></body></html>`
	out, ok := Extract(doc)
	require.True(t, ok)
	assert.Contains(t, out, "A &amp; B &lt;Fund&gt;")
}

func TestExtractPure(t *testing.T) {
	a, okA := Extract(inlineDoc)
	b, okB := Extract(inlineDoc)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}
