// Package syntax provides a lexicon based sentence analyzer used when no
// external NLP service is configured.
package syntax

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

// Heuristic finds sentence boundaries and guesses subject/verb presence from
// small word lists and suffix rules. It is stateless and safe for concurrent use.
type Heuristic struct{}

// NewHeuristic returns the default analyzer
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var _ grammar.SentenceAnalyzer = (*Heuristic)(nil)

// Sentences splits text after runs of '.', '!' or '?' that are followed by
// whitespace or the end of the text. Spans exclude surrounding whitespace.
func (h *Heuristic) Sentences(text string) []grammar.Sentence {
	var sentences []grammar.Sentence
	start := -1
	for i, r := range text {
		if start < 0 {
			if unicode.IsSpace(r) {
				continue
			}
			start = i
		}
		if !isTerminator(r) {
			continue
		}
		end := i + utf8.RuneLen(r)
		if next, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && !unicode.IsSpace(next) {
			continue
		}
		sentences = append(sentences, span(text, start, end))
		start = -1
	}
	if start >= 0 {
		end := len(strings.TrimRightFunc(text, unicode.IsSpace))
		sentences = append(sentences, span(text, start, end))
	}
	return sentences
}

// AnalyzeSentence reports whether the sentence appears to contain a verb and a
// subject in front of it. A sentence that opens with its verb is treated as
// having no subject.
func (h *Heuristic) AnalyzeSentence(ctx context.Context, s grammar.Sentence) (grammar.SentenceAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return grammar.SentenceAnalysis{}, err
	}

	words := tokenize(s.Text)
	verbAt := -1
	for i, w := range words {
		if isVerb(w, i) {
			verbAt = i
			break
		}
	}

	var analysis grammar.SentenceAnalysis
	if verbAt < 0 {
		for _, w := range words {
			if _, ok := pronouns[w]; ok {
				analysis.HasSubject = true
				break
			}
		}
		return analysis, nil
	}

	analysis.HasVerb = true
	if _, ok := pronouns[words[verbAt]]; ok {
		analysis.HasSubject = true
		return analysis, nil
	}
	for _, w := range words[:verbAt] {
		if _, skip := nonSubjects[w]; skip || strings.HasSuffix(w, "ly") {
			continue
		}
		analysis.HasSubject = true
		break
	}
	return analysis, nil
}

func span(text string, start, end int) grammar.Sentence {
	return grammar.Sentence{Text: text[start:end], Start: start, End: end}
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// isVerb guesses whether word is a verb. position matters because words such
// as "need" or "walk" are verbs far more often after a subject.
func isVerb(word string, position int) bool {
	if _, ok := auxiliaries[word]; ok {
		return true
	}
	if _, ok := commonVerbs[word]; ok {
		return true
	}
	if _, ok := nonSubjects[word]; ok {
		return false
	}
	if _, ok := pronouns[word]; ok {
		return false
	}
	if strings.HasSuffix(word, "n't") {
		return true
	}
	if position > 0 && len(word) > 4 && strings.HasSuffix(word, "ed") {
		return true
	}
	return false
}
