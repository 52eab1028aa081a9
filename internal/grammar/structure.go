package grammar

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Sentence is one sentence span of a text; Start and End are byte offsets
type Sentence struct {
	Text  string
	Start int
	End   int
}

// SentenceAnalysis is what an analyzer reports about a single sentence
type SentenceAnalysis struct {
	HasSubject bool
	HasVerb    bool
}

// SentenceAnalyzer is the syntactic collaborator behind the structural checks.
// Implementations may call out to an NLP service; AnalyzeSentence errors are
// treated as "no opinion" for that sentence.
type SentenceAnalyzer interface {
	Sentences(text string) []Sentence
	AnalyzeSentence(ctx context.Context, s Sentence) (SentenceAnalysis, error)
}

const (
	minSubjectWords = 4
	runOnWords      = 25
	runOnMaxCommas  = 2
	runOnPreviewLen = 50
)

var questionWords = []string{"what", "where", "when", "why", "how", "who", "which"}

// CheckStructure reports missing subjects and run-on sentences. A sentence the
// analyzer cannot handle is skipped entirely. A nil analyzer disables the checks.
func CheckStructure(ctx context.Context, text string, analyzer SentenceAnalyzer, logger *zap.Logger) []Finding {
	if analyzer == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var findings []Finding
	for _, s := range analyzer.Sentences(text) {
		sentence := strings.TrimSpace(s.Text)
		if sentence == "" {
			continue
		}
		analysis, err := analyzer.AnalyzeSentence(ctx, s)
		if err != nil {
			logger.Warn("Sentence analysis failed, skipping structural checks",
				zap.Int("start", s.Start),
				zap.Int("end", s.End),
				zap.Error(err))
			continue
		}

		words := strings.Fields(sentence)
		if analysis.HasVerb && !analysis.HasSubject && len(words) >= minSubjectWords && !isQuestion(sentence) {
			findings = append(findings, Finding{
				Category:    CategoryStructure,
				Original:    sentence,
				Suggestion:  fmt.Sprintf("Add a subject: '%s'", sentence),
				Start:       s.Start,
				End:         s.End,
				Explanation: "Complete sentences need a subject (who or what is doing the action)",
				Severity:    SeverityHigh,
			})
		}

		if len(words) > runOnWords && strings.Count(sentence, ",") < runOnMaxCommas {
			findings = append(findings, Finding{
				Category:    CategoryLength,
				Original:    preview(sentence),
				Suggestion:  "Consider breaking this into shorter sentences",
				Start:       s.Start,
				End:         s.End,
				Explanation: "Long sentences can be hard to read. Try shorter ones!",
				Severity:    SeverityLow,
			})
		}
	}
	return findings
}

// isQuestion reports whether the sentence starts with a question word. The
// match is on the prefix, so "However" and "Whenever" count as well.
func isQuestion(sentence string) bool {
	lower := strings.ToLower(strings.TrimLeftFunc(sentence, func(r rune) bool { return !unicode.IsLetter(r) }))
	for _, q := range questionWords {
		if strings.HasPrefix(lower, q) {
			return true
		}
	}
	return false
}

// preview shortens a sentence to runOnPreviewLen characters plus an ellipsis
func preview(sentence string) string {
	if utf8.RuneCountInString(sentence) <= runOnPreviewLen {
		return sentence
	}
	return string([]rune(sentence)[:runOnPreviewLen]) + "..."
}
