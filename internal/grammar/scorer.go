package grammar

import "strings"

const (
	maxScore        = 100
	maxLengthBonus  = 15
	maxVarietyBonus = 10
	wordsPerBonus   = 8
	uniquePerBonus  = 10
)

// Score rates the original text from 0 to 100. Each finding subtracts its
// severity penalty; longer and more varied texts earn a small bonus. Text
// without words scores 0.
func Score(original string, findings []Finding) int {
	words := strings.Fields(original)
	if len(words) == 0 {
		return 0
	}

	penalty := 0
	for _, f := range findings {
		penalty += f.Severity.Penalty()
	}

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	lengthBonus := min(maxLengthBonus, len(words)/wordsPerBonus)
	varietyBonus := min(maxVarietyBonus, len(unique)/uniquePerBonus)

	return max(0, min(maxScore, maxScore-penalty+lengthBonus+varietyBonus))
}
