package grammar

import (
	"strings"
	"unicode"
)

// Apply runs every rule over text cumulatively, in order, so each rule sees the
// output of the ones before it. Sentence-initial letters are then capitalised.
// A rule that fails is skipped for the whole pass.
func Apply(text string, rules []*Rule) string {
	return apply(text, rules, nil)
}

func apply(text string, rules []*Rule, onFailure failureFunc) string {
	corrected := text
	for _, rule := range rules {
		next, err := rule.replaceAll(corrected)
		if err != nil {
			if onFailure != nil {
				onFailure(rule, err)
			}
			continue
		}
		corrected = next
	}
	return CapitalizeSentences(corrected)
}

// CapitalizeSentences upper-cases the first letter of the text and of every
// segment that follows a run of '.', '!' or '?' plus whitespace. Everything
// else, whitespace included, is left untouched, so "e.g." and "3.5" survive.
func CapitalizeSentences(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	capNext, pending := true, false
	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			capNext, pending = false, true
		case unicode.IsSpace(r):
			if pending {
				capNext, pending = true, false
			}
		default:
			if capNext {
				r = unicode.ToUpper(r)
			}
			capNext, pending = false, false
		}
		b.WriteRune(r)
	}
	return b.String()
}
