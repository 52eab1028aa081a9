package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectByKeywords(t *testing.T) {
	catalog := MustCompile([]Rule{
		{ID: "i-are", Trigger: `\bi\s+are\b`, Correction: "I am"},
		{ID: "think", Trigger: `\bI\s+think\s+that\b`, Correction: "It appears that"},
		{ID: "gonna", Trigger: `\bgonna\b`, Correction: "going to"},
	})

	assert.Equal(t, []string{"i-are"}, ruleIDs(catalog.SelectByKeywords(9, BasicKeywords, AdvancedKeywords)))
	assert.Equal(t, []string{"i-are", "gonna"}, ruleIDs(catalog.SelectByKeywords(12, BasicKeywords, AdvancedKeywords)))
	assert.Equal(t, []string{"i-are", "think", "gonna"}, ruleIDs(catalog.SelectByKeywords(16, BasicKeywords, AdvancedKeywords)))

	// Without a declared band the same keyword lists decide membership.
	assert.Equal(t, []string{"i-are"}, ruleIDs(catalog.SelectBand(BandBasic)))
	assert.Equal(t, []string{"i-are", "gonna"}, ruleIDs(catalog.SelectBand(BandIntermediate)))
}

func TestBands(t *testing.T) {
	for tier, band := range map[int]Band{-3: BandBasic, 0: BandBasic, 10: BandBasic, 11: BandIntermediate, 14: BandIntermediate, 15: BandAdvanced, 1000: BandAdvanced} {
		assert.Equal(t, band, BandFor(tier), "tier %d", tier)
	}

	band, err := ParseBand(" Advanced ")
	require.NoError(t, err)
	assert.Equal(t, BandAdvanced, band)
	_, err = ParseBand("expert")
	assert.Error(t, err)

	assert.Equal(t, "Beginner (Basic grammar rules)", BandBasic.Label())
}
