package grammar

import (
	"fmt"
	"strings"
	"unicode"
)

// Keyword groups used when a rule does not declare its category or severity.
// They are matched against the words of the trigger text, never the matched text.
var (
	agreementWords   = wordSet("am", "are", "is", "was", "were", "have", "has")
	articleWords     = wordSet("a", "an")
	confusionWords   = wordSet("your", "you're", "its", "it's", "there", "their", "they're", "to", "too", "accept", "except", "affect", "effect")
	contractionWords = wordSet("dont", "cant", "wont", "didnt", "isnt", "arent", "wasnt", "werent", "hasnt", "havent", "doesnt", "couldnt", "shouldnt", "wouldnt")
	comparativeWords = wordSet("than", "better", "more", "faster", "worse")
	modalWords       = wordSet("of", "should", "could", "would", "must", "might", "able")
	negationWords    = wordSet("no", "nothing", "nobody", "none", "never", "nowhere")
)

// Classify returns the category and severity findings of r carry. Declared
// fields win; undeclared ones are inferred from the trigger words in a fixed
// priority order, so every occurrence of a rule is classified identically.
func Classify(r *Rule) (Category, Severity) {
	words := triggerWords(r.Trigger)

	category := r.Category
	if category == "" {
		category = inferCategory(words)
	}

	severity := r.Severity
	if !severity.Known() {
		if severity == "" {
			severity = inferSeverity(words)
		} else {
			severity = SeverityMedium
		}
	}
	return category, severity
}

func inferCategory(words []string) Category {
	switch {
	case hasAny(words, agreementWords):
		return CategoryAgreement
	case hasAny(words, articleWords):
		return CategoryArticle
	case hasAny(words, confusionWords):
		return CategoryConfusion
	case hasAny(words, contractionWords):
		return CategoryContraction
	case hasAny(words, comparativeWords):
		return CategoryComparative
	case hasAny(words, modalWords):
		return CategoryModal
	default:
		return CategoryGrammar
	}
}

func inferSeverity(words []string) Severity {
	switch {
	case hasAny(words, agreementWords), hasAny(words, negationWords):
		return SeverityHigh
	case hasAny(words, articleWords), hasAny(words, contractionWords), hasAny(words, confusionWords):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// triggerWords extracts the literal words of a trigger expression, dropping
// escape sequences such as \b and \s
func triggerWords(trigger string) []string {
	var cleaned strings.Builder
	for i := 0; i < len(trigger); i++ {
		if trigger[i] == '\\' && i+1 < len(trigger) {
			if trigger[i+1] == '\'' {
				cleaned.WriteByte('\'')
			} else {
				cleaned.WriteByte(' ')
			}
			i++
			continue
		}
		cleaned.WriteByte(trigger[i])
	}
	return strings.FieldsFunc(strings.ToLower(cleaned.String()), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func hasAny(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

var explanations = map[Category]string{
	CategoryArticle:        "Use 'an' before vowel sounds (a, e, i, o, u) and 'a' before consonant sounds.",
	CategoryContraction:    "Don't forget the apostrophe (') when combining words!",
	CategoryCapitalization: "The word 'I' is always written with a capital letter.",
	CategoryConfusion:      "These words sound similar but mean different things. Check the meaning!",
	CategoryComparative:    "Don't use 'more' with words that already show comparison like 'better'.",
	CategoryModal:          "Use 'have' not 'of' after words like should, could, would.",
	CategoryTense:          "Words like 'yesterday' tell us the action is finished, so use the past tense.",
	CategoryVerbForm:       "This verb is irregular. Its past form doesn't end in -ed.",
	CategoryNegation:       "Two negatives cancel each other out. Use only one negative word.",
	CategoryPreposition:    "This word usually goes with a different preposition.",
	CategoryQuantifier:     "Use 'many' and 'fewer' with things you can count, 'much' and 'less' with things you can't.",
	CategoryInformal:       "This is informal. Use the full form in writing.",
	CategoryRedundancy:     "Part of this phrase repeats the same idea. Keep it short.",
	CategoryAcademic:       "In formal writing, prefer impersonal and precise phrasing.",
	CategoryGrammar:        "This is a common grammar mistake. Practice makes perfect!",
}

// explain returns the explanation attached to a finding of rule r on original
func explain(r *Rule, original string) string {
	if r.Explanation != "" {
		return r.Explanation
	}
	if r.category == CategoryAgreement {
		return fmt.Sprintf("'%s' doesn't match. Remember: I am, You are, He/She/It is!", original)
	}
	if e, ok := explanations[r.category]; ok {
		return e
	}
	return "This needs to be corrected for proper English."
}
