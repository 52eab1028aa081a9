package grammar

import "fmt"

// MaxSuggestions caps the number of learning tips returned per result
const MaxSuggestions = 3

// feedbackLadder holds the summary lines for the score bands >=90, >=75, >=60 and below
var feedbackLadder = map[Band][4]string{
	BandBasic: {
		"WOW! You're an amazing writer!",
		"Great job! You're getting better!",
		"Good work! Let's fix a few things.",
		"Keep trying! You're learning!",
	},
	BandIntermediate: {
		"Excellent writing! Your grammar is really strong.",
		"Good work! Just a few small grammar points to improve.",
		"Nice effort! Let's work on these grammar areas together.",
		"Keep practicing! Grammar takes time to master.",
	},
	BandAdvanced: {
		"Outstanding! Your English demonstrates strong command of grammar.",
		"Well done! Minor corrections will polish your writing.",
		"Good foundation! Focus on these specific grammar points.",
		"Solid effort! These corrections will strengthen your writing.",
	},
}

type tip struct {
	category Category
	basic    string
	other    string
}

// tips are tested in this order; each present category adds one line
var tips = []tip{
	{CategoryAgreement,
		"Say your sentence out loud. Does it sound right?",
		"Practice matching subjects with verbs: I am, You are, He/She is"},
	{CategoryArticle,
		"Remember: 'an apple' but 'a banana'",
		"Use 'an' before vowel sounds and 'a' before consonant sounds"},
	{CategoryConfusion,
		"Make flashcards for confusing words like your/you're, its/it's",
		"Make flashcards for confusing words like your/you're, its/it's"},
	{CategoryContraction,
		"Don't forget apostrophes in contractions: don't, can't, won't",
		"Don't forget apostrophes in contractions: don't, can't, won't"},
	{CategoryStructure,
		"Every sentence needs someone doing something!",
		"Check that each sentence has a subject and predicate"},
}

var generalTips = map[Band][]string{
	BandBasic: {
		"Try writing about your favorite things!",
		"Read books to see how good sentences look!",
	},
	BandIntermediate: {
		"Read your writing aloud to catch mistakes",
		"Try using more descriptive words in your sentences",
	},
	BandAdvanced: {
		"Consider varying your sentence structure for better flow",
		"Focus on precision in word choice and grammar",
	},
}

// Feedback builds the summary line and up to MaxSuggestions learning tips
// for a score, its findings and the writer's tier.
func Feedback(score int, findings []Finding, tier int) (string, []string) {
	band := BandFor(tier)
	return summary(score, len(findings), band), suggestions(findings, band)
}

func summary(score, count int, band Band) string {
	ladder := feedbackLadder[band]
	var line string
	switch {
	case score >= 90:
		line = ladder[0]
	case score >= 75:
		line = ladder[1]
	case score >= 60:
		line = ladder[2]
	default:
		line = ladder[3]
	}

	switch count {
	case 0:
		return line + " No corrections needed!"
	case 1:
		return line + " I found 1 area to improve."
	default:
		return fmt.Sprintf("%s I found %d areas to improve.", line, count)
	}
}

func suggestions(findings []Finding, band Band) []string {
	present := make(map[Category]bool, len(findings))
	for _, f := range findings {
		present[f.Category] = true
	}

	var out []string
	for _, t := range tips {
		if !present[t.category] {
			continue
		}
		if band == BandBasic {
			out = append(out, t.basic)
		} else {
			out = append(out, t.other)
		}
	}
	if len(out) == 0 {
		out = append(out, generalTips[band]...)
	}
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
