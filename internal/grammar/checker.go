package grammar

import (
	"context"

	"go.uber.org/zap"
)

// Checker runs the full correction pipeline. It holds no per-request state and
// is safe for concurrent use.
type Checker struct {
	catalog  *Catalog
	analyzer SentenceAnalyzer
	logger   *zap.Logger
}

// New creates a checker over catalog. analyzer may be nil to disable the
// structural checks; a nil catalog means DefaultCatalog.
func New(catalog *Catalog, analyzer SentenceAnalyzer, logger *zap.Logger) *Checker {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		catalog:  catalog,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Catalog returns the rule catalog the checker uses
func (c *Checker) Catalog() *Catalog {
	return c.catalog
}

// Correct checks text at the given tier and always returns a complete result
func (c *Checker) Correct(ctx context.Context, text string, tier int) *Result {
	rules := c.catalog.Select(tier)

	findings := findAll(text, rules, c.ruleFailed("find"))
	findings = append(findings, CheckStructure(ctx, text, c.analyzer, c.logger)...)
	if findings == nil {
		findings = []Finding{}
	}

	score := Score(text, findings)
	feedback, suggestions := Feedback(score, findings, tier)

	result := &Result{
		OriginalText:  text,
		CorrectedText: apply(text, rules, c.ruleFailed("apply")),
		Findings:      findings,
		Score:         score,
		Feedback:      feedback,
		Suggestions:   suggestions,
		Tier:          tier,
		Band:          BandFor(tier),
	}

	c.logger.Debug("Text checked",
		zap.Int("tier", tier),
		zap.Int("rules", len(rules)),
		zap.Int("findings", len(findings)),
		zap.Int("score", score))

	return result
}

func (c *Checker) ruleFailed(stage string) failureFunc {
	return func(rule *Rule, err error) {
		c.logger.Debug("Rule skipped",
			zap.String("stage", stage),
			zap.String("rule_id", rule.ID),
			zap.Error(err))
	}
}
