package grammar

import (
	"strings"
)

// failureFunc is told about every rule application that failed
type failureFunc func(rule *Rule, err error)

// FindAll scans text against rules and returns one finding per matching
// occurrence. Findings follow rule order first and occurrence order second.
// A rule that fails on an occurrence is skipped for that occurrence only.
func FindAll(text string, rules []*Rule) []Finding {
	return findAll(text, rules, nil)
}

func findAll(text string, rules []*Rule, onFailure failureFunc) []Finding {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var findings []Finding
	for _, rule := range rules {
		for _, loc := range rule.pattern.FindAllStringSubmatchIndex(text, -1) {
			suggestion, ok, err := rule.occurrence(text, loc)
			if err != nil {
				if onFailure != nil {
					onFailure(rule, err)
				}
				continue
			}
			original := text[loc[0]:loc[1]]
			if !ok || suggestion == original {
				continue
			}
			findings = append(findings, Finding{
				RuleID:      rule.ID,
				Category:    rule.category,
				Original:    original,
				Suggestion:  suggestion,
				Start:       loc[0],
				End:         loc[1],
				Explanation: explain(rule, original),
				Severity:    rule.severity,
			})
		}
	}
	return findings
}
