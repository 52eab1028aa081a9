package grammar

import (
	"fmt"
	"strings"
)

// Band is a proficiency band. Each band sees a progressively larger slice of the catalog.
type Band string

const (
	BandBasic        Band = "basic"
	BandIntermediate Band = "intermediate"
	BandAdvanced     Band = "advanced"
)

// Tier thresholds. Tiers are age-like integers.
const (
	BasicMaxTier        = 10
	IntermediateMaxTier = 14
)

// BandFor maps a tier onto its band. Anything above the intermediate range is advanced.
func BandFor(tier int) Band {
	switch {
	case tier <= BasicMaxTier:
		return BandBasic
	case tier <= IntermediateMaxTier:
		return BandIntermediate
	default:
		return BandAdvanced
	}
}

// ParseBand parses a band name
func ParseBand(s string) (Band, error) {
	switch Band(strings.ToLower(strings.TrimSpace(s))) {
	case BandBasic:
		return BandBasic, nil
	case BandIntermediate:
		return BandIntermediate, nil
	case BandAdvanced:
		return BandAdvanced, nil
	default:
		return "", fmt.Errorf("unknown band: %q", s)
	}
}

// Label is the display label of the band
func (b Band) Label() string {
	switch b {
	case BandBasic:
		return "Beginner (Basic grammar rules)"
	case BandIntermediate:
		return "Intermediate (More grammar rules)"
	default:
		return "Advanced (All grammar rules)"
	}
}

// includes reports whether a rule declared for band r is active in band b
func (b Band) includes(r Band) bool {
	switch b {
	case BandBasic:
		return r == BandBasic
	case BandIntermediate:
		return r != BandAdvanced
	default:
		return true
	}
}

// Select returns the rules appropriate for the tier, in catalog order
func (c *Catalog) Select(tier int) []*Rule {
	return c.SelectBand(BandFor(tier))
}

// SelectBand returns the rules active in band, in catalog order
func (c *Catalog) SelectBand(band Band) []*Rule {
	selected := make([]*Rule, 0, len(c.rules))
	for _, rule := range c.rules {
		if band.includes(rule.band()) {
			selected = append(selected, rule)
		}
	}
	return selected
}

// Keyword lists for SelectByKeywords. Matching is substring based over the
// lower-cased trigger text.
var (
	BasicKeywords = []string{
		`i\s+are`, `you\s+is`, `he\s+are`, `she\s+are`, `we\s+is`, `they\s+is`,
		`dont`, `cant`, `wont`, `didnt`,
		`(apple|orange`, `(cat|dog`, `your\s+(happy`, `there\s+(house`,
	}
	AdvancedKeywords = []string{
		`i\s+think`, `in\s+my\s+opinion`, `very\s+unique`, `a\s+lot\s+of`, `academic`, `formal`,
	}
)

// SelectByKeywords filters the catalog the way undeclared rule packs are
// filtered: basic keeps rules whose trigger contains an allow keyword,
// intermediate drops rules whose trigger contains a deny keyword, advanced
// keeps everything. Two rules for the same concept may land in different
// bands when their triggers are phrased differently.
func (c *Catalog) SelectByKeywords(tier int, allow, deny []string) []*Rule {
	band := BandFor(tier)
	selected := make([]*Rule, 0, len(c.rules))
	for _, rule := range c.rules {
		trigger := strings.ToLower(rule.Trigger)
		switch band {
		case BandBasic:
			if containsAny(trigger, allow) {
				selected = append(selected, rule)
			}
		case BandIntermediate:
			if !containsAny(trigger, deny) {
				selected = append(selected, rule)
			}
		default:
			selected = append(selected, rule)
		}
	}
	return selected
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
