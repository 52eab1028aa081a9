package grammar

import (
	"errors"
	"math"
)

// Category is the human-facing grouping label for a finding
type Category string

const (
	CategoryAgreement      Category = "Subject-Verb Agreement"
	CategoryArticle        Category = "Article Usage"
	CategoryContraction    Category = "Contractions"
	CategoryCapitalization Category = "Capitalization"
	CategoryConfusion      Category = "Word Confusion"
	CategoryComparative    Category = "Comparatives"
	CategoryModal          Category = "Modal Verbs"
	CategoryTense          Category = "Verb Tense"
	CategoryVerbForm       Category = "Verb Forms"
	CategoryNegation       Category = "Double Negatives"
	CategoryPreposition    Category = "Prepositions"
	CategoryQuantifier     Category = "Quantifiers"
	CategoryInformal       Category = "Informal Language"
	CategoryRedundancy     Category = "Redundancy"
	CategoryAcademic       Category = "Academic Style"
	CategoryStructure      Category = "Sentence Structure"
	CategoryLength         Category = "Sentence Length"
	CategoryGrammar        Category = "Grammar"
)

// Severity weights a finding for scoring
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Penalty returns the score deduction for the severity. Unknown values count as medium.
func (s Severity) Penalty() int {
	switch s {
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 10
	case SeverityLow:
		return 5
	default:
		return 10
	}
}

// Known reports whether s is one of the three declared levels
func (s Severity) Known() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

var (
	// ErrTemplate is returned when a correction template references a group the trigger does not capture
	ErrTemplate = errors.New("correction template references unknown group")
	// ErrInvalidRule is returned for rules that cannot be compiled
	ErrInvalidRule = errors.New("invalid rule")
)

// Finding is one detected, localized instance of a possible error
type Finding struct {
	RuleID      string   `json:"rule_id,omitempty"`
	Category    Category `json:"category"`
	Original    string   `json:"original"`
	Suggestion  string   `json:"suggestion"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Explanation string   `json:"explanation"`
	Severity    Severity `json:"severity"`
}

// Result is the complete answer to one correction request
type Result struct {
	OriginalText  string    `json:"original_text"`
	CorrectedText string    `json:"corrected_text"`
	Findings      []Finding `json:"findings"`
	Score         int       `json:"score"`
	Feedback      string    `json:"feedback"`
	Suggestions   []string  `json:"suggestions"`
	Tier          int       `json:"tier"`
	Band          Band      `json:"band"`
}

// CategoryGroup holds the findings of one category in first-seen order
type CategoryGroup struct {
	Category Category  `json:"category"`
	Findings []Finding `json:"findings"`
}

// FindingsByCategory groups findings by category, keeping the order in which
// each category first appears.
func (r *Result) FindingsByCategory() []CategoryGroup {
	var groups []CategoryGroup
	index := make(map[Category]int)
	for _, f := range r.Findings {
		i, ok := index[f.Category]
		if !ok {
			i = len(groups)
			index[f.Category] = i
			groups = append(groups, CategoryGroup{Category: f.Category})
		}
		groups[i].Findings = append(groups[i].Findings, f)
	}
	return groups
}

// Stars converts the score into a one to five star rating
func (r *Result) Stars() int {
	stars := int(math.Round(float64(r.Score) / 20))
	if stars < 1 {
		return 1
	}
	if stars > 5 {
		return 5
	}
	return stars
}

// Categories returns the distinct categories present in the result
func (r *Result) Categories() []Category {
	groups := r.FindingsByCategory()
	out := make([]Category, len(groups))
	for i, g := range groups {
		out[i] = g.Category
	}
	return out
}
