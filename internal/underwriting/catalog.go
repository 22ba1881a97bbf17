package underwriting

import (
	"sort"
	"strings"
)

// Catalog resolves free-text locations to risk profiles. It is built once
// and read-only afterward, so it is safe for concurrent use without locking.
type Catalog struct {
	byKey    map[string]*RiskProfile
	keywords []keywordEntry // ordered: catalog declaration order pins fuzzy tie-breaks
}

// keywordEntry maps one slug token to its profile for the fuzzy pass.
type keywordEntry struct {
	keyword string
	profile *RiskProfile
}

// NewCatalog builds the location catalog from the compiled-in risk table.
// Every entry is registered under three keys pointing at the same profile:
// the canonical slug, the normalized slug, and the normalized display name.
// This accepts machine keys ("uttar_pradesh") as well as natural input
// ("Uttar Pradesh", "uttarpradesh").
func NewCatalog() *Catalog {
	c := &Catalog{
		byKey: make(map[string]*RiskProfile, len(riskCatalog)*3),
	}

	for i := range riskCatalog {
		entry := &riskCatalog[i]
		profile := &entry.profile

		c.byKey[entry.slug] = profile
		c.byKey[normalizeLocation(entry.slug)] = profile
		c.byKey[normalizeLocation(profile.Location)] = profile

		for _, kw := range strings.Split(entry.slug, "_") {
			c.keywords = append(c.keywords, keywordEntry{keyword: kw, profile: profile})
		}
	}

	return c
}

// Resolve finds the best-matching profile for a free-text location, or nil
// when nothing matches. Absence is an expected outcome, not an error: the
// calculator prices unknown locations on a flat per-hazard path.
//
// Matching runs in two passes: an exact lookup on the normalized input, then
// a fuzzy pass that returns the first catalog keyword contained in the input.
// The fuzzy pass walks keywords in catalog declaration order, so an input
// naming both a region and a city inside it ("Jaisalmer, Rajasthan" spelled
// out in prose) resolves to whichever is declared first, regions before
// their cities.
func (c *Catalog) Resolve(location string) *RiskProfile {
	normalized := normalizeLocation(location)
	if normalized == "" {
		return nil
	}

	if profile, ok := c.byKey[normalized]; ok {
		return profile
	}

	for _, ke := range c.keywords {
		if strings.Contains(normalized, ke.keyword) {
			return ke.profile
		}
	}

	return nil
}

// Locations returns the deduplicated display names of every catalog entry,
// sorted ascending. Used by presentation layers for search/autocomplete.
func (c *Catalog) Locations() []string {
	seen := make(map[string]bool, len(riskCatalog))
	names := make([]string, 0, len(riskCatalog))
	for i := range riskCatalog {
		name := riskCatalog[i].profile.Location
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Size returns the number of canonical catalog entries.
func (c *Catalog) Size() int {
	return len(riskCatalog)
}

// normalizeLocation lowercases the input and strips spaces, underscores,
// hyphens, and commas so "Uttar Pradesh", "uttar_pradesh", and
// "uttarpradesh" all key identically.
func normalizeLocation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-', ',':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeHazard canonicalizes a hazard type string: lowercase with spaces
// collapsed to underscores ("Heat Wave" -> "heat_wave").
func NormalizeHazard(weatherType string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(weatherType)))
	return strings.Join(fields, "_")
}
