// Package taxonomy resolves per-schema concept dictionaries for native XBRL
// parsing. A dictionary maps logical report fields to an ordered list of
// acceptable taxonomy concept names; synonyms vary across taxonomy versions
// and vendors, so dictionaries are versioned data loaded from yaml, with
// built-in defaults for unrecognized schemas.
//
// Resolve returns a call-scoped copy. Callers thread the dictionary through
// the parse explicitly and never store it on shared parser state, which keeps
// concurrent parses on one parser instance race-free.
package taxonomy

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// FieldKind declares how a matched fact value is coerced.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindDecimal FieldKind = "decimal"
	KindInt     FieldKind = "int"
	KindDate    FieldKind = "date"
)

// FieldMapping binds one logical report field to its concept-name synonyms,
// in priority order (first match wins).
type FieldMapping struct {
	Field    string    `yaml:"field"`
	Kind     FieldKind `yaml:"kind"`
	Concepts []string  `yaml:"concepts"`
}

// Dictionary is the concept mapping for one taxonomy family.
type Dictionary struct {
	// Name identifies the dictionary in logs and provenance.
	Name string `yaml:"name"`

	// SchemaPatterns are case-insensitive substrings matched against a
	// document's schema reference to select this dictionary.
	SchemaPatterns []string `yaml:"schema_patterns"`

	// Fields is the ordered mapping table.
	Fields []FieldMapping `yaml:"fields"`
}

// Matches reports whether schemaRef selects this dictionary.
func (d Dictionary) Matches(schemaRef string) bool {
	lower := strings.ToLower(schemaRef)
	for _, p := range d.SchemaPatterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// clone returns a deep copy so callers can hold the dictionary across a parse
// without sharing slices with the registry.
func (d Dictionary) clone() Dictionary {
	out := Dictionary{Name: d.Name}
	out.SchemaPatterns = append([]string(nil), d.SchemaPatterns...)
	out.Fields = make([]FieldMapping, len(d.Fields))
	for i, f := range d.Fields {
		out.Fields[i] = FieldMapping{
			Field:    f.Field,
			Kind:     f.Kind,
			Concepts: append([]string(nil), f.Concepts...),
		}
	}
	return out
}

// Registry holds the loaded dictionaries. Immutable after construction.
type Registry struct {
	dicts    []Dictionary
	fallback Dictionary
}

// NewRegistry builds a registry from the built-in dictionaries.
func NewRegistry() *Registry {
	return &Registry{
		dicts:    builtinDictionaries(),
		fallback: defaultDictionary(),
	}
}

// LoadDir merges yaml dictionary files from dir on top of the built-ins.
// A file named default.yaml replaces the fallback dictionary. Loaded
// dictionaries take precedence over built-ins with the same name.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "taxonomy: read dictionary dir %s", dir)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrapf(err, "taxonomy: read %s", path)
		}
		var d Dictionary
		if err := yaml.Unmarshal(data, &d); err != nil {
			return eris.Wrapf(err, "taxonomy: parse %s", path)
		}
		if d.Name == "" {
			zap.L().Warn("taxonomy: skipping dictionary without name", zap.String("path", path))
			continue
		}
		if d.Name == "default" {
			r.fallback = d
			continue
		}
		r.upsert(d)
		zap.L().Info("taxonomy: loaded dictionary",
			zap.String("name", d.Name),
			zap.Int("fields", len(d.Fields)),
		)
	}
	return nil
}

func (r *Registry) upsert(d Dictionary) {
	for i, existing := range r.dicts {
		if existing.Name == d.Name {
			r.dicts[i] = d
			return
		}
	}
	r.dicts = append(r.dicts, d)
}

// Resolve selects the dictionary for a schema reference and returns a
// call-scoped copy. Unrecognized (or empty) schemas resolve to the default
// dictionary, so extraction always has a mapping table to work with.
func (r *Registry) Resolve(schemaRef string) Dictionary {
	for _, d := range r.dicts {
		if d.Matches(schemaRef) {
			return d.clone()
		}
	}
	return r.fallback.clone()
}

// Names lists registered dictionary names, fallback last.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.dicts)+1)
	for _, d := range r.dicts {
		out = append(out, d.Name)
	}
	return append(out, r.fallback.Name)
}

// schemaRefPattern pulls the href out of a link:schemaRef (or bare schemaRef)
// element. Only the document prefix is scanned; the declaration sits in the
// first few hundred bytes of well-formed instances.
var schemaRefPattern = regexp.MustCompile(`(?i)<(?:link:)?schemaRef[^>]*?(?:xlink:)?href\s*=\s*["']([^"']+)["']`)

// schemaScanBytes bounds the schema-reference scan.
const schemaScanBytes = 16 * 1024

// DetectSchemaRef extracts the declared taxonomy schema reference from an
// XBRL instance. Returns "" when no declaration is found.
func DetectSchemaRef(content string) string {
	sample := content
	if len(sample) > schemaScanBytes {
		sample = sample[:schemaScanBytes]
	}
	m := schemaRefPattern.FindStringSubmatch(sample)
	if m == nil {
		return ""
	}
	return m[1]
}
