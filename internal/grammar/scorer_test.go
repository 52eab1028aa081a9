package grammar

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	high := Finding{Severity: SeverityHigh}
	medium := Finding{Severity: SeverityMedium}
	low := Finding{Severity: SeverityLow}

	tests := []struct {
		name     string
		text     string
		findings []Finding
		want     int
	}{
		{"EmptyText", "", nil, 0},
		{"EmptyTextIgnoresFindings", "  ", []Finding{high}, 0},
		{"OneHighNoBonus", "I are here", []Finding{high}, 85},
		{"EachSeverity", "I are here", []Finding{high, medium, low}, 70},
		{"UnknownSeverityCountsAsMedium", "I are here", []Finding{{Severity: "critical"}}, 90},
		{"ClampedAtZero", "bad", []Finding{high, high, high, high, high, high, high}, 0},
		{"ClampedAtHundred", cleanSentence, nil, 100},
		// 16 words, 16 unique: +2 length, +1 variety
		{"Bonuses", "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen", []Finding{high, high}, 73},
		// 8 copies of one word: +1 length, no variety
		{"RepeatedWordsEarnNoVariety", strings.Repeat("go ", 8), []Finding{high}, 86},
		{"LengthBonusCapped", strings.Repeat("word ", 200), []Finding{high, high, high}, 100 - 45 + 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.text, tt.findings))
		})
	}

	t.Run("VarietyBonusCapped", func(t *testing.T) {
		words := make([]string, 120)
		for i := range words {
			words[i] = fmt.Sprintf("w%d", i)
		}
		findings := []Finding{high, high, high, high}
		assert.Equal(t, 100-60+15+10, Score(strings.Join(words, " "), findings))
	})

	t.Run("OrderIndependent", func(t *testing.T) {
		assert.Equal(t,
			Score("I are here", []Finding{high, low, medium}),
			Score("I are here", []Finding{medium, high, low}))
	})
}

func TestFeedback(t *testing.T) {
	t.Run("Ladder", func(t *testing.T) {
		tests := []struct {
			score, tier int
			want        string
		}{
			{95, 8, "WOW! You're an amazing writer!"},
			{80, 8, "Great job! You're getting better!"},
			{60, 10, "Good work! Let's fix a few things."},
			{59, 10, "Keep trying! You're learning!"},
			{90, 11, "Excellent writing! Your grammar is really strong."},
			{75, 14, "Good work! Just a few small grammar points to improve."},
			{61, 12, "Nice effort! Let's work on these grammar areas together."},
			{0, 12, "Keep practicing! Grammar takes time to master."},
			{100, 15, "Outstanding! Your English demonstrates strong command of grammar."},
			{89, 30, "Well done! Minor corrections will polish your writing."},
			{74, 18, "Good foundation! Focus on these specific grammar points."},
			{10, 16, "Solid effort! These corrections will strengthen your writing."},
		}
		for _, tt := range tests {
			summary, _ := Feedback(tt.score, nil, tt.tier)
			assert.Equal(t, tt.want+" No corrections needed!", summary, "score %d tier %d", tt.score, tt.tier)
		}
	})

	t.Run("CountClause", func(t *testing.T) {
		one, _ := Feedback(85, []Finding{{Category: CategoryGrammar}}, 12)
		assert.True(t, strings.HasSuffix(one, " I found 1 area to improve."), one)

		three, _ := Feedback(70, make([]Finding, 3), 12)
		assert.True(t, strings.HasSuffix(three, " I found 3 areas to improve."), three)
	})

	t.Run("SuggestionsFollowCategoryPriority", func(t *testing.T) {
		findings := []Finding{
			{Category: CategoryStructure},
			{Category: CategoryContraction},
			{Category: CategoryConfusion},
			{Category: CategoryArticle},
			{Category: CategoryAgreement},
		}
		_, tips := Feedback(40, findings, 12)
		assert.Equal(t, []string{
			"Practice matching subjects with verbs: I am, You are, He/She is",
			"Use 'an' before vowel sounds and 'a' before consonant sounds",
			"Make flashcards for confusing words like your/you're, its/it's",
		}, tips)
	})

	t.Run("BasicWording", func(t *testing.T) {
		_, tips := Feedback(40, []Finding{{Category: CategoryStructure}, {Category: CategoryAgreement}}, 7)
		assert.Equal(t, []string{
			"Say your sentence out loud. Does it sound right?",
			"Every sentence needs someone doing something!",
		}, tips)
	})

	t.Run("GeneralTipsWhenNoCategoryMatches", func(t *testing.T) {
		for tier, band := range map[int]Band{5: BandBasic, 13: BandIntermediate, 40: BandAdvanced} {
			_, tips := Feedback(90, []Finding{{Category: CategoryRedundancy}}, tier)
			assert.Equal(t, generalTips[band], tips)
			assert.Len(t, tips, 2)
		}
	})
}

func TestResultHelpers(t *testing.T) {
	result := &Result{
		Score: 47,
		Findings: []Finding{
			{Category: CategoryConfusion, Original: "too school"},
			{Category: CategoryAgreement, Original: "I are"},
			{Category: CategoryConfusion, Original: "there house"},
		},
	}

	groups := result.FindingsByCategory()
	if assert.Len(t, groups, 2) {
		assert.Equal(t, CategoryConfusion, groups[0].Category)
		assert.Len(t, groups[0].Findings, 2)
		assert.Equal(t, CategoryAgreement, groups[1].Category)
	}
	assert.Equal(t, []Category{CategoryConfusion, CategoryAgreement}, result.Categories())

	for score, stars := range map[int]int{0: 1, 9: 1, 47: 2, 50: 3, 75: 4, 89: 4, 90: 5, 100: 5} {
		result.Score = score
		assert.Equal(t, stars, result.Stars(), "score %d", score)
	}
}
