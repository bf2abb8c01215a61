// Package i18n provides the translation lookup the sheet layer uses
// for localized labels and prompt text.
//
// Lookup never fails: a missing key yields a visible placeholder
// string embedding the key, so a gap in a translation table degrades
// one label instead of blocking the whole sheet.
package i18n

import (
	"golang.org/x/text/language"
)

// MissingPrefix starts the placeholder returned for unknown keys.
const MissingPrefix = "TRANSLATION_KEY_UNDEFINED: "

// Catalog holds per-language translation tables and picks the best
// table for a caller's language preferences.
type Catalog struct {
	tags    []language.Tag
	tables  map[language.Tag]map[string]string
	matcher language.Matcher
}

// NewCatalog creates an empty catalog. The first language added
// becomes the fallback for callers no table matches.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[language.Tag]map[string]string)}
}

// Add registers a translation table for a language. Adding the same
// tag twice merges the tables, later entries winning.
func (c *Catalog) Add(tag language.Tag, table map[string]string) {
	existing, ok := c.tables[tag]
	if !ok {
		existing = make(map[string]string, len(table))
		c.tables[tag] = existing
		c.tags = append(c.tags, tag)
		c.matcher = language.NewMatcher(c.tags)
	}
	for k, v := range table {
		existing[k] = v
	}
}

// Pick returns the bundle best matching the caller's preferred
// languages, in preference order. With no registered tables it returns
// an empty bundle whose every lookup is a placeholder.
func (c *Catalog) Pick(preferred ...string) *Bundle {
	if len(c.tags) == 0 {
		return &Bundle{}
	}
	_, idx := language.MatchStrings(c.matcher, preferred...)
	return &Bundle{table: c.tables[c.tags[idx]]}
}

// Bundle is one language's resolved translation table.
type Bundle struct {
	table map[string]string
}

// NewBundle wraps a bare table, for tests and single-language sheets.
func NewBundle(table map[string]string) *Bundle {
	return &Bundle{table: table}
}

// Get returns the translation for key, or a visible placeholder when
// the key is missing. Never an error: degraded text beats a dead sheet.
func (b *Bundle) Get(key string) string {
	if b != nil && b.table != nil {
		if v, ok := b.table[key]; ok && v != "" {
			return v
		}
	}
	return MissingPrefix + key
}

// Has reports whether key resolves without falling back.
func (b *Bundle) Has(key string) bool {
	if b == nil || b.table == nil {
		return false
	}
	v, ok := b.table[key]
	return ok && v != ""
}
