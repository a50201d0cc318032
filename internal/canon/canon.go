// Package canon resolves free-text worker and product names to their
// canonical identities.
//
// The shop's spreadsheets are authored independently: the production log
// spells a worker "Fransico" while the equipment matrix has "Fransisco",
// temp workers carry a "Temp - " prefix, and product names drift between
// "Tenjam - Blue" and "Tenjam Blue". Canonicalization is an explicit,
// reviewed mapping table, a pure lookup with no fuzzy matching. Names
// without a mapping pass through unchanged, which lets new legitimate
// names flow through without failing the import.
package canon

import "strings"

// Table maps raw spellings to canonical names for one entity class.
type Table map[string]string

// Canonical returns the authoritative name for a raw spelling.
// Unknown names are returned as-is (trimmed). Canonical names map to
// themselves, so the lookup is idempotent.
func (t Table) Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if canonical, ok := t[raw]; ok {
		return canonical
	}
	return raw
}

// Workers maps worker-name variants seen across the source sheets to the
// spelling used in the equipment matrix, which is treated as authoritative.
var Workers = Table{
	"Temp - Noe":       "Noe",
	"Temp - Fransisco": "Fransisco",
	"Fransico":         "Fransisco",
	"Cindy":            "Cyndi",
	"Maricela":         "Maricella",
}

// Products maps product-name variants to the catalog spelling.
var Products = Table{
	"Tenjam - Blue":  "Tenjam Blue",
	"Tenjam - White": "Tenjam White",
}

// Worker resolves a raw worker name against the default worker table.
func Worker(raw string) string { return Workers.Canonical(raw) }

// Product resolves a raw product name against the default product table.
func Product(raw string) string { return Products.Canonical(raw) }
