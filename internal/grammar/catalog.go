package grammar

import "sync"

// DefaultRules returns the built-in rule list in application order.
//
// Order is part of the contract: the corrector applies rules cumulatively, so
// a later rule sees the output of every earlier one. For example the
// generic a/an rules run before the "an hour" / "a university" rules, and
// "she don't" becomes "she doesn't" before the double-negative rules look
// for "doesn't have no".
func DefaultRules() []Rule {
	return []Rule{
		// Elementary agreement
		{ID: "sva-i-are", Trigger: `\bI\s+are\b`, Correction: `I am`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},
		{ID: "sva-you-is", Trigger: `\byou\s+is\b`, Correction: `You are`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},
		{ID: "sva-he-are", Trigger: `\bhe\s+are\b`, Correction: `He is`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},
		{ID: "sva-she-are", Trigger: `\bshe\s+are\b`, Correction: `She is`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},
		{ID: "sva-it-are", Trigger: `\bit\s+are\b`, Correction: `It is`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},
		{ID: "sva-we-is", Trigger: `\bwe\s+is\b`, Correction: `We are`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},
		{ID: "sva-they-is", Trigger: `\bthey\s+is\b`, Correction: `They are`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandBasic},

		// Elementary articles
		{ID: "art-basic-an", Trigger: `\ba\s+(apple|orange|elephant|umbrella|egg|ice)\b`, Correction: `an $1`, Category: CategoryArticle, Severity: SeverityMedium, Band: BandBasic},
		{ID: "art-basic-a", Trigger: `\ban\s+(cat|dog|ball|book|car|house)\b`, Correction: `a $1`, Category: CategoryArticle, Severity: SeverityMedium, Band: BandBasic},

		// Simple contractions
		{ID: "con-dont", Trigger: `\bdont\b`, Correction: `don't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandBasic},
		{ID: "con-cant", Trigger: `\bcant\b`, Correction: `can't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandBasic},
		{ID: "con-wont", Trigger: `\bwont\b`, Correction: `won't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandBasic},
		{ID: "con-didnt", Trigger: `\bdidnt\b`, Correction: `didn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandBasic},

		// Lower-case pronoun. Case sensitive so "I" itself never matches.
		{ID: "cap-i", Trigger: `\bi(\s|'(?:m|ve|ll|d)\b)`, Correction: `I$1`, Category: CategoryCapitalization, Severity: SeverityLow, Band: BandBasic, CaseSensitive: true},

		// Elementary word confusion
		{ID: "wc-your-youre", Trigger: `\byour\s+(happy|going|nice|welcome|right)\b`, Correction: `you're $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandBasic},
		{ID: "wc-there-their", Trigger: `\bthere\s+(house|car|dog|mom|dad|friend|school)\b`, Correction: `their $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandBasic},

		// Agreement
		{ID: "sva-there-is-many", Trigger: `\bthere\s+is\s+(many|several|some|lots)\b`, Correction: `There are $1`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-third-have", Trigger: `\b(he|she|it)\s+have\b`, Correction: `$1 has`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-third-do", Trigger: `\b(he|she|it)\s+do\b`, Correction: `$1 does`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-third-go", Trigger: `\b(he|she|it)\s+go\b`, Correction: `$1 goes`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-third-dont", Trigger: `\b(he|she|it)\s+don't\b`, Correction: `$1 doesn't`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-plural-has", Trigger: `\b(I|you|we|they)\s+has\b`, Correction: `$1 have`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-plural-does", Trigger: `\b(I|you|we|they)\s+does\b`, Correction: `$1 do`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-plural-goes", Trigger: `\b(I|you|we|they)\s+goes\b`, Correction: `$1 go`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-plural-doesnt", Trigger: `\b(I|you|we|they)\s+doesn't\b`, Correction: `$1 don't`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-neg-has", Trigger: `\b(don't|doesn't|didn't)\s+has\b`, Correction: `$1 have`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "sva-neg-went", Trigger: `\b(didn't|did not)\s+went\b`, Correction: `$1 go`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},

		// Articles. The exception lists stand in for the lookahead RE2 lacks.
		{ID: "art-vowel", Trigger: `\ba\s+([aeiou]\w*)`, Correction: `an $1`, Category: CategoryArticle, Severity: SeverityMedium, Band: BandIntermediate,
			Exceptions: []string{"university", "universities", "uniform", "union", "unique", "unit", "united", "universe", "universal", "user", "useful", "usual", "usually", "utensil", "one", "once", "european", "euro", "ewe"}},
		{ID: "art-consonant", Trigger: `\ban\s+([bcdfghjklmnpqrstvwxyz]\w*)`, Correction: `a $1`, Category: CategoryArticle, Severity: SeverityMedium, Band: BandIntermediate,
			Exceptions: []string{"hour", "hours", "hourly", "honest", "honestly", "honor", "honour", "honorable", "heir", "heiress", "mba", "fbi", "nba", "x-ray"}},
		{ID: "art-silent-h", Trigger: `\ba\s+(hour|honest|honor)\b`, Correction: `an $1`, Category: CategoryArticle, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "art-long-u", Trigger: `\ban\s+(university|uniform|union)\b`, Correction: `a $1`, Category: CategoryArticle, Severity: SeverityMedium, Band: BandIntermediate},

		// More contractions
		{ID: "con-isnt", Trigger: `\bisnt\b`, Correction: `isn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-arent", Trigger: `\barent\b`, Correction: `aren't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-wasnt", Trigger: `\bwasnt\b`, Correction: `wasn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-werent", Trigger: `\bwerent\b`, Correction: `weren't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-hasnt", Trigger: `\bhasnt\b`, Correction: `hasn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-havent", Trigger: `\bhavent\b`, Correction: `haven't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-doesnt", Trigger: `\bdoesnt\b`, Correction: `doesn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-couldnt", Trigger: `\bcouldnt\b`, Correction: `couldn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-shouldnt", Trigger: `\bshouldnt\b`, Correction: `shouldn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "con-wouldnt", Trigger: `\bwouldnt\b`, Correction: `wouldn't`, Category: CategoryContraction, Severity: SeverityMedium, Band: BandIntermediate},

		// Word confusion
		{ID: "wc-its-itis", Trigger: `\bits\s+(going|raining|time|snowing|late|okay|ok)\b`, Correction: `it's $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "wc-itis-its", Trigger: `\bit's\s+(house|color|colour|tail|own|name)\b`, Correction: `its $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "wc-to-too", Trigger: `\bto\s+(much|many|late)\b`, Correction: `too $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "wc-too-to", Trigger: `\btoo\s+(school|work|home|bed|church)\b`, Correction: `to $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},

		// Comparatives
		{ID: "cmp-more-better", Trigger: `\bmore\s+better\b`, Correction: `better`, Category: CategoryComparative, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "cmp-more-er", Trigger: `\bmore\s+(faster|bigger|smaller|taller|worse|easier|harder|stronger)\b`, Correction: `$1`, Category: CategoryComparative, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "cmp-good-than", Trigger: `\bgood\s+than\b`, Correction: `better than`, Category: CategoryComparative, Severity: SeverityLow, Band: BandIntermediate},

		// Common mistakes
		{ID: "wc-alot", Trigger: `\balot\b`, Correction: `a lot`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "mod-should-of", Trigger: `\bshould\s+of\b`, Correction: `should have`, Category: CategoryModal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "mod-could-of", Trigger: `\bcould\s+of\b`, Correction: `could have`, Category: CategoryModal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "mod-would-of", Trigger: `\bwould\s+of\b`, Correction: `would have`, Category: CategoryModal, Severity: SeverityLow, Band: BandIntermediate},

		// Past tense with time markers
		{ID: "tns-go-yesterday", Trigger: `\bI\s+go\s+(yesterday|last\s+week|last\s+night)\b`, Correction: `I went $1`, Category: CategoryTense, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "tns-see-yesterday", Trigger: `\bI\s+see\s+(yesterday|last\s+week|last\s+night)\b`, Correction: `I saw $1`, Category: CategoryTense, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "tns-eat-yesterday", Trigger: `\bI\s+eat\s+(yesterday|last\s+week|last\s+night)\b`, Correction: `I ate $1`, Category: CategoryTense, Severity: SeverityLow, Band: BandIntermediate},

		// Modal verbs
		{ID: "mod-can-able", Trigger: `\bcan\s+able\s+to\b`, Correction: `can`, Category: CategoryModal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "mod-must-of", Trigger: `\bmust\s+of\b`, Correction: `must have`, Category: CategoryModal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "mod-might-of", Trigger: `\bmight\s+of\b`, Correction: `might have`, Category: CategoryModal, Severity: SeverityLow, Band: BandIntermediate},

		// Question formation
		{ID: "sva-question-do", Trigger: `\b(how|what|where|when|why)\s+do\s+(he|she|it|this|that)\b`, Correction: `$1 does $2`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},

		// Double negatives
		{ID: "neg-have-no", Trigger: `\b(don't|doesn't|didn't)\s+have\s+no\b`, Correction: `$1 have any`, Category: CategoryNegation, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "neg-see-nothing", Trigger: `\b(can't|couldn't|didn't)\s+see\s+nothing\b`, Correction: `$1 see anything`, Category: CategoryNegation, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "neg-do-nothing", Trigger: `\b(didn't|don't|doesn't)\s+do\s+nothing\b`, Correction: `$1 do anything`, Category: CategoryNegation, Severity: SeverityHigh, Band: BandIntermediate},
		{ID: "neg-verb-nothing", Trigger: `\b(don't|doesn't|didn't|can't|won't)\s+(know|want|need|get|say)\s+nothing\b`, Correction: `$1 $2 anything`, Category: CategoryNegation, Severity: SeverityHigh, Band: BandIntermediate},

		// Prepositions
		{ID: "prep-different-than", Trigger: `\bdifferent\s+than\b`, Correction: `different from`, Category: CategoryPreposition, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "prep-married-with", Trigger: `\bmarried\s+with\b`, Correction: `married to`, Category: CategoryPreposition, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "prep-in-weekday", Trigger: `\bin\s+(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\b`, Correction: `on $1`, Category: CategoryPreposition, Severity: SeverityLow, Band: BandIntermediate},

		// Stative verbs after "am"
		{ID: "sva-am-agree", Trigger: `\bI\s+am\s+(agree|understand|know)\b`, Correction: `I $1`, Category: CategoryAgreement, Severity: SeverityHigh, Band: BandIntermediate},

		// Quantifiers
		{ID: "qty-many-money", Trigger: `\bmany\s+(money|water|time|homework|information)\b`, Correction: `much $1`, Category: CategoryQuantifier, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "qty-much-count", Trigger: `\bmuch\s+(books|people|friends|students|cars|things)\b`, Correction: `many $1`, Category: CategoryQuantifier, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "qty-less-count", Trigger: `\bless\s+(books|people|friends|students|cars|things)\b`, Correction: `fewer $1`, Category: CategoryQuantifier, Severity: SeverityLow, Band: BandIntermediate},

		// Informal to formal
		{ID: "inf-aint", Trigger: `\bain't\b`, Correction: `is not`, Category: CategoryInformal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "inf-gonna", Trigger: `\bgonna\b`, Correction: `going to`, Category: CategoryInformal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "inf-wanna", Trigger: `\bwanna\b`, Correction: `want to`, Category: CategoryInformal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "inf-gotta", Trigger: `\bgotta\b`, Correction: `have to`, Category: CategoryInformal, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "inf-kinda", Trigger: `\bkinda\b`, Correction: `kind of`, Category: CategoryInformal, Severity: SeverityLow, Band: BandIntermediate},

		// Irregular verb forms
		{ID: "vf-teached", Trigger: `\bteached\b`, Correction: `taught`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-catched", Trigger: `\bcatched\b`, Correction: `caught`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-buyed", Trigger: `\bbuyed\b`, Correction: `bought`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-goed", Trigger: `\bgoed\b`, Correction: `went`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-thinked", Trigger: `\bthinked\b`, Correction: `thought`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-bringed", Trigger: `\bbringed\b`, Correction: `brought`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-eated", Trigger: `\beated\b`, Correction: `ate`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "vf-runned", Trigger: `\brunned\b`, Correction: `ran`, Category: CategoryVerbForm, Severity: SeverityLow, Band: BandIntermediate},

		// Redundant phrases
		{ID: "red-free-gift", Trigger: `\bfree\s+gift\b`, Correction: `gift`, Category: CategoryRedundancy, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "red-atm-machine", Trigger: `\bATM\s+machine\b`, Correction: `ATM`, Category: CategoryRedundancy, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "red-pin-number", Trigger: `\bPIN\s+number\b`, Correction: `PIN`, Category: CategoryRedundancy, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "red-close-proximity", Trigger: `\bclose\s+proximity\b`, Correction: `proximity`, Category: CategoryRedundancy, Severity: SeverityLow, Band: BandIntermediate},
		{ID: "red-return-back", Trigger: `\breturn\s+back\b`, Correction: `return`, Category: CategoryRedundancy, Severity: SeverityLow, Band: BandIntermediate},

		// Harder confusions
		{ID: "wc-accept-for", Trigger: `\baccept\s+for\b`, Correction: `except for`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "wc-an-affect", Trigger: `\b(an|the)\s+affect\s+(of|on)\b`, Correction: `$1 effect $2`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "wc-borrow-me", Trigger: `\bborrow\s+me\b`, Correction: `lend me`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},
		{ID: "wc-learn-you", Trigger: `\blearn\s+(you|me|him|her|us|them)\b`, Correction: `teach $1`, Category: CategoryConfusion, Severity: SeverityMedium, Band: BandIntermediate},

		// Academic register, advanced only
		{ID: "acad-i-think", Trigger: `\bI\s+think\s+that\b`, Correction: `It appears that`, Category: CategoryAcademic, Severity: SeverityLow, Band: BandAdvanced},
		{ID: "acad-in-my-opinion", Trigger: `\bIn\s+my\s+opinion\b`, Correction: `It can be argued that`, Category: CategoryAcademic, Severity: SeverityLow, Band: BandAdvanced},
		{ID: "acad-a-lot-of", Trigger: `\ba\s+lot\s+of\b`, Correction: `many`, Category: CategoryAcademic, Severity: SeverityLow, Band: BandAdvanced},
		{ID: "acad-very-unique", Trigger: `\bvery\s+unique\b`, Correction: `unique`, Category: CategoryAcademic, Severity: SeverityLow, Band: BandAdvanced},
	}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the compiled built-in catalog. It is built once and
// shared read-only by every caller.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = MustCompile(DefaultRules())
	})
	return defaultCatalog
}
