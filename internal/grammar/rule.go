package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is one error-shape rule: a trigger expression paired with a correction template
type Rule struct {
	ID            string   `yaml:"id" json:"id"`
	Trigger       string   `yaml:"trigger" json:"trigger"`
	Correction    string   `yaml:"correction" json:"correction"`
	Category      Category `yaml:"category" json:"category"`
	Severity      Severity `yaml:"severity" json:"severity"`
	Band          Band     `yaml:"band" json:"band"`
	Exceptions    []string `yaml:"exceptions" json:"exceptions,omitempty"`
	CaseSensitive bool     `yaml:"case_sensitive" json:"case_sensitive,omitempty"`
	Explanation   string   `yaml:"explanation" json:"explanation,omitempty"`

	pattern     *regexp.Regexp
	templateErr error
	exceptions  map[string]struct{}
	category    Category
	severity    Severity
}

// compile builds the matcher for the rule. A bad template does not fail
// compilation; it surfaces as ErrTemplate each time the rule is applied.
func (r *Rule) compile() error {
	if r.Trigger == "" {
		return fmt.Errorf("%w: rule %q has an empty trigger", ErrInvalidRule, r.ID)
	}
	expr := r.Trigger
	if !r.CaseSensitive {
		expr = "(?i)" + expr
	}
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("%w: rule %q: %v", ErrInvalidRule, r.ID, err)
	}
	r.pattern = pattern
	r.templateErr = checkTemplate(r.Correction, pattern)
	if len(r.Exceptions) > 0 {
		r.exceptions = make(map[string]struct{}, len(r.Exceptions))
		for _, e := range r.Exceptions {
			r.exceptions[strings.ToLower(e)] = struct{}{}
		}
	}
	r.category, r.severity = Classify(r)
	return nil
}

func (r *Rule) band() Band {
	if r.Band != "" {
		return r.Band
	}
	trigger := strings.ToLower(r.Trigger)
	switch {
	case containsAny(trigger, BasicKeywords):
		return BandBasic
	case containsAny(trigger, AdvancedKeywords):
		return BandAdvanced
	default:
		return BandIntermediate
	}
}

// occurrence expands the correction for one match. loc is a submatch index
// slice as returned by FindAllStringSubmatchIndex. ok is false when the
// occurrence is exempt through the exception list.
func (r *Rule) occurrence(src string, loc []int) (replacement string, ok bool, err error) {
	if r.excepted(src, loc) {
		return "", false, nil
	}
	if r.templateErr != nil {
		return "", false, r.templateErr
	}
	expanded := r.pattern.ExpandString(nil, r.Correction, src, loc)
	return matchCase(src[loc[0]:loc[1]], string(expanded)), true, nil
}

// excepted reports whether the first captured word (or the whole match when the
// trigger has no groups) is on the exception list
func (r *Rule) excepted(src string, loc []int) bool {
	if r.exceptions == nil {
		return false
	}
	word := src[loc[0]:loc[1]]
	if len(loc) >= 4 && loc[2] >= 0 {
		word = src[loc[2]:loc[3]]
	}
	_, found := r.exceptions[strings.ToLower(word)]
	return found
}

// replaceAll applies the rule to every non-overlapping match in text
func (r *Rule) replaceAll(text string) (string, error) {
	matches := r.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range matches {
		replacement, ok, err := r.occurrence(text, loc)
		if err != nil {
			return text, err
		}
		if !ok {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(replacement)
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// checkTemplate verifies that every $n / ${n} / ${name} reference in tmpl is
// captured by pattern
func checkTemplate(tmpl string, pattern *regexp.Regexp) error {
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '$' || i+1 >= len(tmpl) {
			continue
		}
		rest := tmpl[i+1:]
		if rest[0] == '$' {
			i++
			continue
		}
		var name string
		if rest[0] == '{' {
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return fmt.Errorf("%w: unterminated reference in %q", ErrTemplate, tmpl)
			}
			name = rest[1:end]
		} else {
			n := 0
			for n < len(rest) && isNameByte(rest[n]) {
				n++
			}
			name = rest[:n]
		}
		if name == "" {
			continue
		}
		if num, err := strconv.Atoi(name); err == nil {
			if num > pattern.NumSubexp() {
				return fmt.Errorf("%w: $%d in %q", ErrTemplate, num, tmpl)
			}
			continue
		}
		if pattern.SubexpIndex(name) < 0 {
			return fmt.Errorf("%w: ${%s} in %q", ErrTemplate, name, tmpl)
		}
	}
	return nil
}

func isNameByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// matchCase aligns the case of the first letter of replacement with the
// matched text. The pronoun "I" and all-caps words such as "ATM" are left alone.
func matchCase(matched, replacement string) string {
	m, _ := utf8.DecodeRuneInString(matched)
	first, size := utf8.DecodeRuneInString(replacement)
	if size == 0 || !unicode.IsLetter(m) || !unicode.IsLetter(first) {
		return replacement
	}
	if isPronounI(replacement) {
		return replacement
	}
	second, _ := utf8.DecodeRuneInString(replacement[size:])
	switch {
	case unicode.IsUpper(m) && unicode.IsLower(first):
		return string(unicode.ToUpper(first)) + replacement[size:]
	case unicode.IsLower(m) && unicode.IsUpper(first) && !unicode.IsUpper(second):
		return string(unicode.ToLower(first)) + replacement[size:]
	}
	return replacement
}

func isPronounI(s string) bool {
	if !strings.HasPrefix(s, "I") {
		return false
	}
	if len(s) == 1 {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[1:])
	return !unicode.IsLetter(next)
}

// Catalog is an ordered, immutable rule list. It is safe for concurrent use.
type Catalog struct {
	rules       []*Rule
	fingerprint string
}

// Compile validates and compiles rules into a catalog, keeping their order.
// The rules are copied; later changes to the input have no effect.
func Compile(rules []Rule) (*Catalog, error) {
	compiled := make([]*Rule, 0, len(rules))
	seen := make(map[string]bool, len(rules))
	hasher := sha256.New()
	for i := range rules {
		rule := rules[i]
		rule.Exceptions = append([]string(nil), rules[i].Exceptions...)
		if rule.ID == "" {
			rule.ID = fmt.Sprintf("rule-%03d", i+1)
		}
		if seen[rule.ID] {
			return nil, fmt.Errorf("%w: duplicate rule id %q", ErrInvalidRule, rule.ID)
		}
		seen[rule.ID] = true
		if err := rule.compile(); err != nil {
			return nil, err
		}
		fmt.Fprintf(hasher, "%s\x00%s\x00%s\x00%s\x00%s\x00%s\x00%t\x00%s\x00%s\n",
			rule.ID, rule.Trigger, rule.Correction, rule.category, rule.severity, rule.band(),
			rule.CaseSensitive, strings.Join(rule.Exceptions, ","), rule.Explanation)
		compiled = append(compiled, &rule)
	}
	return &Catalog{
		rules:       compiled,
		fingerprint: hex.EncodeToString(hasher.Sum(nil))[:16],
	}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(rules []Rule) *Catalog {
	c, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return c
}

// Extend returns a new catalog with extra rules appended after the existing ones
func (c *Catalog) Extend(extra []Rule) (*Catalog, error) {
	all := make([]Rule, 0, len(c.rules)+len(extra))
	for _, r := range c.rules {
		all = append(all, *r)
	}
	all = append(all, extra...)
	return Compile(all)
}

// Rules returns the catalog rules in order
func (c *Catalog) Rules() []*Rule {
	return append([]*Rule(nil), c.rules...)
}

// Len returns the number of rules
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Lookup finds a rule by id
func (c *Catalog) Lookup(id string) (*Rule, bool) {
	for _, r := range c.rules {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Fingerprint identifies the rule set. It changes whenever a rule is added, removed or edited.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// EffectiveCategory is the category findings of this rule carry
func (r *Rule) EffectiveCategory() Category { return r.category }

// EffectiveSeverity is the severity findings of this rule carry
func (r *Rule) EffectiveSeverity() Severity { return r.severity }

// EffectiveBand is the lowest band the rule is active in
func (r *Rule) EffectiveBand() Band { return r.band() }
