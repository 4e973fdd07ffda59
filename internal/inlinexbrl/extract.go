// Package inlinexbrl pulls XBRL facts embedded in inline-XBRL HTML back out
// into a standalone XBRL instance document that standard XBRL tooling can
// process. Extraction is a pure function; an HTML page without inline facts
// is a miss, not an error.
package inlinexbrl

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// fact is one inline fact lifted from the HTML body.
type fact struct {
	name       string
	contextRef string
	unitRef    string
	scale      string
	sign       string
	value      string
}

// Extract locates ix:-namespace facts in htmlText and reconstructs a
// standalone XBRL instance. The second return is false when the document
// carries no inline XBRL at all.
func Extract(htmlText string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		// The html5 parser accepts almost anything; a reader error means
		// truly unusable input.
		return "", false
	}

	var facts []fact
	doc.Find(`ix\:nonfraction, ix\:nonnumeric`).Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			return
		}
		f := fact{
			name:  name,
			value: strings.TrimSpace(sel.Text()),
		}
		f.contextRef, _ = sel.Attr("contextref")
		f.unitRef, _ = sel.Attr("unitref")
		f.scale, _ = sel.Attr("scale")
		f.sign, _ = sel.Attr("sign")
		facts = append(facts, f)
	})

	if len(facts) == 0 {
		return "", false
	}

	schemaRef := findSchemaRef(doc)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance">` + "\n")
	if schemaRef != "" {
		fmt.Fprintf(&b, "  <link:schemaRef xlink:type=\"simple\" xlink:href=%q/>\n", schemaRef)
	}
	for _, f := range facts {
		writeFact(&b, f)
	}
	b.WriteString("</xbrl>\n")

	zap.L().Debug("inlinexbrl: extracted facts",
		zap.Int("facts", len(facts)),
		zap.String("schema_ref", schemaRef),
	)
	return b.String(), true
}

// findSchemaRef looks for the taxonomy declaration inside the ix:header
// references block (or anywhere in the document as a fallback).
func findSchemaRef(doc *goquery.Document) string {
	var ref string
	doc.Find(`link\:schemaref, schemaref`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if href, ok := sel.Attr("xlink:href"); ok && href != "" {
			ref = href
			return false
		}
		if href, ok := sel.Attr("href"); ok && href != "" {
			ref = href
			return false
		}
		return true
	})
	return ref
}

// writeFact serializes one fact as a plain element. The ix scale attribute is
// preserved on the element so downstream tooling can apply it; the value text
// is emitted exactly as displayed.
func writeFact(b *strings.Builder, f fact) {
	name := sanitizeName(f.name)
	b.WriteString("  <" + name)
	if f.contextRef != "" {
		fmt.Fprintf(b, " contextRef=%q", f.contextRef)
	}
	if f.unitRef != "" {
		fmt.Fprintf(b, " unitRef=%q", f.unitRef)
	}
	if f.scale != "" {
		fmt.Fprintf(b, " scale=%q", f.scale)
	}
	if f.sign != "" {
		fmt.Fprintf(b, " sign=%q", f.sign)
	}
	b.WriteString(">" + escapeText(f.value) + "</" + name + ">\n")
}

// sanitizeName keeps only characters legal in an XML element name; inline
// documents occasionally carry whitespace-damaged name attributes.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ':', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Fact"
	}
	return b.String()
}

func escapeText(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
