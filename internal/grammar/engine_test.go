package grammar

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAll(t *testing.T) {
	t.Run("RuleOrderThenOccurrenceOrder", func(t *testing.T) {
		catalog := MustCompile([]Rule{
			{ID: "cat-dog", Trigger: `\bcat\b`, Correction: `dog`},
			{ID: "dog-cat", Trigger: `\bdog\b`, Correction: `cat`},
		})

		got := FindAll("dog cat dog", catalog.Rules())

		want := []Finding{
			{RuleID: "cat-dog", Original: "cat", Suggestion: "dog", Start: 4, End: 7},
			{RuleID: "dog-cat", Original: "dog", Suggestion: "cat", Start: 0, End: 3},
			{RuleID: "dog-cat", Original: "dog", Suggestion: "cat", Start: 8, End: 11},
		}
		opts := cmpopts.IgnoreFields(Finding{}, "Explanation", "Category", "Severity")
		if diff := cmp.Diff(want, got, opts); diff != "" {
			t.Errorf("findings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("SuggestionIsPerOccurrence", func(t *testing.T) {
		catalog := MustCompile([]Rule{
			{ID: "third-have", Trigger: `\b(he|she|it)\s+have\b`, Correction: `$1 has`},
		})

		got := FindAll("She have a cat and he have a dog", catalog.Rules())

		require.Len(t, got, 2)
		assert.Equal(t, "She has", got[0].Suggestion)
		assert.Equal(t, "he has", got[1].Suggestion)
	})

	t.Run("OverlappingRulesBothReport", func(t *testing.T) {
		got := FindAll("I ate a apple", DefaultCatalog().Select(12))

		var ids []string
		for _, f := range got {
			assert.Equal(t, "a apple", f.Original)
			ids = append(ids, f.RuleID)
		}
		assert.Equal(t, []string{"art-basic-an", "art-vowel"}, ids)
	})

	t.Run("ExceptionWordsAreSkipped", func(t *testing.T) {
		rules := DefaultCatalog().Select(12)
		for _, text := range []string{"She is a university student", "We waited an hour", "He is an honest man", "It is a useful tool"} {
			assert.Empty(t, FindAll(text, rules), text)
		}
	})

	t.Run("NoOpMatchesAreNotFindings", func(t *testing.T) {
		catalog := MustCompile([]Rule{
			{ID: "noop", Trigger: `\bcolou?r\b`, Correction: `$0`},
		})

		assert.Empty(t, FindAll("What colour is it", catalog.Rules()))
	})

	t.Run("BrokenTemplateIsSkipped", func(t *testing.T) {
		catalog := MustCompile([]Rule{
			{ID: "broken", Trigger: `\bteh\b`, Correction: `$2`},
			{ID: "fine", Trigger: `\bteh\b`, Correction: `the`},
		})

		var failures []string
		got := findAll("teh cat and teh dog", catalog.Rules(), func(r *Rule, err error) {
			assert.True(t, errors.Is(err, ErrTemplate))
			failures = append(failures, r.ID)
		})

		assert.Equal(t, []string{"broken", "broken"}, failures)
		require.Len(t, got, 2)
		assert.Equal(t, "fine", got[0].RuleID)
	})

	t.Run("EmptyText", func(t *testing.T) {
		assert.Empty(t, FindAll("", DefaultCatalog().Rules()))
	})
}

func TestApply(t *testing.T) {
	t.Run("Cumulative", func(t *testing.T) {
		rules := MustCompile([]Rule{
			{ID: "a", Trigger: `\bfoo\b`, Correction: `bar`},
			{ID: "b", Trigger: `\bbar\b`, Correction: `baz`},
		}).Rules()

		assert.Equal(t, "Baz", Apply("foo", rules))
		assert.Equal(t, "Bar", Apply("foo", []*Rule{rules[1], rules[0]}))
	})

	t.Run("DefaultOrderComposesAgreementBeforeNegation", func(t *testing.T) {
		catalog := DefaultCatalog()
		agreement := indexOf(t, catalog, "sva-third-dont")
		negation := indexOf(t, catalog, "neg-have-no")
		assert.Less(t, agreement, negation)

		vowel := indexOf(t, catalog, "art-vowel")
		silentH := indexOf(t, catalog, "art-silent-h")
		assert.Less(t, vowel, silentH)
	})

	t.Run("BrokenRuleSkippedForWholePass", func(t *testing.T) {
		rules := MustCompile([]Rule{
			{ID: "broken", Trigger: `\b(teh)\b`, Correction: `${word}`},
			{ID: "fine", Trigger: `\bdont\b`, Correction: `don't`},
		}).Rules()

		assert.Equal(t, "Teh cat don't", Apply("teh cat dont", rules))
	})

	t.Run("Idempotent", func(t *testing.T) {
		rules := DefaultCatalog().Select(12)
		inputs := []string{
			"I are going too school",
			"She don't have no money",
			"i dont like gonna",
			"he go to school yesterday. it are fun",
			cleanSentence,
		}
		for _, text := range inputs {
			once := Apply(text, rules)
			assert.Equal(t, once, Apply(once, rules), text)
		}
	})

	t.Run("CleanTextOnlyGetsCapitalised", func(t *testing.T) {
		rules := DefaultCatalog().Select(12)
		assert.Equal(t, "The cat sat on the mat. It was warm.", Apply("the cat sat on the mat. it was warm.", rules))
	})

	t.Run("CaseIsKept", func(t *testing.T) {
		rules := DefaultCatalog().Select(12)
		assert.Equal(t, "You are late. There are many cats.", Apply("you is late. There is many cats.", rules))
		assert.Equal(t, "We keep the PIN safe.", Apply("We keep the PIN number safe.", rules))
	})
}

func TestCapitalizeSentences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"hello. world!  how are you?", "Hello. World!  How are you?"},
		{"  leading space", "  Leading space"},
		{"version 3.5 is out", "Version 3.5 is out"},
		{"hello.world", "Hello.world"},
		{"wait... what?! ok", "Wait... What?! Ok"},
		{"line one.\nline two", "Line one.\nLine two"},
		{"\"quoted\" start", "\"quoted\" start"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CapitalizeSentences(tt.in))
		})
	}
}

func indexOf(t *testing.T, c *Catalog, id string) int {
	t.Helper()
	for i, r := range c.Rules() {
		if r.ID == id {
			return i
		}
	}
	t.Fatalf("rule %q not in catalog", id)
	return -1
}
