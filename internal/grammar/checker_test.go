package grammar

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cleanSentence = "The quick brown fox jumps over the lazy dog while seven curious children watch from the quiet garden."

// TestCorrect tests the full pipeline on known inputs
func TestCorrect(t *testing.T) {
	checker := New(DefaultCatalog(), nil, zap.NewNop())
	ctx := context.Background()

	t.Run("AgreementAndConfusion", func(t *testing.T) {
		result := checker.Correct(ctx, "I are going too school", 12)

		assert.Equal(t, "I am going to school", result.CorrectedText)
		want := []Finding{
			{RuleID: "sva-i-are", Category: CategoryAgreement, Original: "I are", Suggestion: "I am", Start: 0, End: 5, Severity: SeverityHigh},
			{RuleID: "wc-too-to", Category: CategoryConfusion, Original: "too school", Suggestion: "to school", Start: 12, End: 22, Severity: SeverityMedium},
		}
		if diff := cmp.Diff(want, result.Findings, cmpopts.IgnoreFields(Finding{}, "Explanation")); diff != "" {
			t.Errorf("findings mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 75, result.Score)
		assert.Equal(t, BandIntermediate, result.Band)
		assert.Equal(t, "Good work! Just a few small grammar points to improve. I found 2 areas to improve.", result.Feedback)
	})

	t.Run("DoubleNegative", func(t *testing.T) {
		result := checker.Correct(ctx, "She don't have no money", 12)

		assert.Equal(t, "She doesn't have any money", result.CorrectedText)
		var negation *Finding
		for i := range result.Findings {
			if result.Findings[i].Category == CategoryNegation {
				negation = &result.Findings[i]
			}
		}
		require.NotNil(t, negation, "expected a double negative finding")
		assert.Equal(t, SeverityHigh, negation.Severity)
		assert.Equal(t, "don't have no", negation.Original)
	})

	t.Run("EmptyText", func(t *testing.T) {
		result := checker.Correct(ctx, "", 8)

		assert.Equal(t, 0, result.Score)
		assert.Empty(t, result.Findings)
		assert.NotNil(t, result.Findings)
		assert.Equal(t, "", result.CorrectedText)
		assert.NotEmpty(t, result.Feedback)
	})

	t.Run("WhitespaceOnly", func(t *testing.T) {
		result := checker.Correct(ctx, "   \n\t", 12)

		assert.Equal(t, 0, result.Score)
		assert.Empty(t, result.Findings)
		assert.Equal(t, "   \n\t", result.CorrectedText)
	})

	t.Run("CleanSentence", func(t *testing.T) {
		result := checker.Correct(ctx, cleanSentence, 12)

		assert.Empty(t, result.Findings)
		assert.Equal(t, 100, result.Score)
		assert.Equal(t, cleanSentence, result.CorrectedText)
		assert.Contains(t, result.Feedback, "No corrections needed!")
	})

	t.Run("ScoreAlwaysInRange", func(t *testing.T) {
		inputs := []string{
			"",
			"i",
			"i are he are she are it are we is they is you is dont cant wont didnt",
			"She don't have no money and he dont know nothing about alot of things.",
			cleanSentence,
		}
		for _, text := range inputs {
			for _, tier := range []int{1, 10, 11, 14, 15, 99} {
				score := checker.Correct(ctx, text, tier).Score
				assert.GreaterOrEqual(t, score, 0, "text %q tier %d", text, tier)
				assert.LessOrEqual(t, score, 100, "text %q tier %d", text, tier)
			}
		}
	})

	t.Run("OutOfRangeTierIsAdvanced", func(t *testing.T) {
		result := checker.Correct(ctx, "I think that it works.", 120)

		assert.Equal(t, BandAdvanced, result.Band)
		assert.Equal(t, "It appears that it works.", result.CorrectedText)
	})
}

// TestCorrect_StructuralFindingsFollowPatternFindings tests the merge order
func TestCorrect_StructuralFindingsFollowPatternFindings(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: SentenceAnalysis{HasVerb: true}}
	checker := New(DefaultCatalog(), analyzer, zap.NewNop())

	result := checker.Correct(context.Background(), "Went too school with my friends", 12)

	require.Len(t, result.Findings, 2)
	assert.Equal(t, CategoryConfusion, result.Findings[0].Category)
	assert.Equal(t, CategoryStructure, result.Findings[1].Category)
	assert.Equal(t, 100-10-15, result.Score)
	assert.Contains(t, result.Suggestions, "Check that each sentence has a subject and predicate")
}

// TestCorrect_AnalyzerFailure tests that analyzer errors never fail a request
func TestCorrect_AnalyzerFailure(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("parser unavailable")}
	checker := New(nil, analyzer, nil)

	result := checker.Correct(context.Background(), "Went to the market early this morning", 12)

	assert.Empty(t, result.Findings)
	assert.Equal(t, "Went to the market early this morning", result.CorrectedText)
}

// TestCorrect_TierMonotonicity tests that elementary rules are active at every tier
func TestCorrect_TierMonotonicity(t *testing.T) {
	catalog := DefaultCatalog()

	for tier := 1; tier <= 20; tier++ {
		ids := ruleIDs(catalog.Select(tier))
		for _, id := range []string{"sva-i-are", "con-dont", "art-basic-an", "cap-i"} {
			assert.Contains(t, ids, id, "tier %d", tier)
		}
	}

	basic := ruleIDs(catalog.SelectBand(BandBasic))
	intermediate := ruleIDs(catalog.SelectBand(BandIntermediate))
	advanced := ruleIDs(catalog.SelectBand(BandAdvanced))

	assert.Subset(t, intermediate, basic)
	assert.Subset(t, advanced, intermediate)
	assert.Len(t, advanced, catalog.Len())
	assert.NotContains(t, intermediate, "acad-i-think")
	assert.Contains(t, advanced, "acad-i-think")
}

type stubAnalyzer struct {
	analysis SentenceAnalysis
	err      error
	failOn   map[int]bool
}

func (s *stubAnalyzer) Sentences(text string) []Sentence {
	var sentences []Sentence
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '.' || i == len(text)-1 {
			sentences = append(sentences, Sentence{Text: text[start : i+1], Start: start, End: i + 1})
			start = i + 1
		}
	}
	return sentences
}

func (s *stubAnalyzer) AnalyzeSentence(_ context.Context, sentence Sentence) (SentenceAnalysis, error) {
	if s.err != nil || s.failOn[sentence.Start] {
		return SentenceAnalysis{}, errors.Join(s.err, errors.New("analysis failed"))
	}
	return s.analysis, nil
}

func ruleIDs(rules []*Rule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	return ids
}
