package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

// Entry is one stored correction
type Entry struct {
	ID            string            `db:"id" json:"id"`
	RequestID     string            `db:"request_id" json:"request_id,omitempty"`
	Source        string            `db:"source" json:"source"`
	Tier          int               `db:"tier" json:"tier"`
	Band          string            `db:"band" json:"band"`
	OriginalText  string            `db:"original_text" json:"original_text"`
	CorrectedText string            `db:"corrected_text" json:"corrected_text"`
	Score         int               `db:"score" json:"score"`
	FindingCount  int               `db:"finding_count" json:"finding_count"`
	FindingsJSON  string            `db:"findings" json:"-"`
	Feedback      string            `db:"feedback" json:"feedback"`
	Fingerprint   string            `db:"catalog_fingerprint" json:"catalog_fingerprint"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	Findings      []grammar.Finding `db:"-" json:"findings"`
}

// NewEntry converts a correction result into a history entry with a fresh id
func NewEntry(result *grammar.Result, fingerprint, source, requestID string) (*Entry, error) {
	findings := result.Findings
	if findings == nil {
		findings = []grammar.Finding{}
	}
	data, err := json.Marshal(findings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode findings: %w", err)
	}
	return &Entry{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		Source:        source,
		Tier:          result.Tier,
		Band:          string(result.Band),
		OriginalText:  result.OriginalText,
		CorrectedText: result.CorrectedText,
		Score:         result.Score,
		FindingCount:  len(findings),
		FindingsJSON:  string(data),
		Feedback:      result.Feedback,
		Fingerprint:   fingerprint,
		CreatedAt:     time.Now().UTC(),
		Findings:      findings,
	}, nil
}

func (e *Entry) decodeFindings() error {
	e.Findings = []grammar.Finding{}
	if e.FindingsJSON == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(e.FindingsJSON), &e.Findings); err != nil {
		return fmt.Errorf("failed to decode findings of %s: %w", e.ID, err)
	}
	return nil
}

// ListOptions filters and pages List results
type ListOptions struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Band   string `json:"band,omitempty"`
	Source string `json:"source,omitempty"`
}

// CategoryCount is the number of findings of one category
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

// Stats summarises the stored corrections
type Stats struct {
	TotalCorrections int64            `json:"total_corrections"`
	TotalFindings    int64            `json:"total_findings"`
	AverageScore     float64          `json:"average_score"`
	PerfectCount     int64            `json:"perfect_count"`
	ByBand           map[string]int64 `json:"by_band"`
	BySeverity       map[string]int64 `json:"by_severity"`
	TopCategories    []CategoryCount  `json:"top_categories"`
}

// BatchInsertResult represents the result of a batch insert operation
type BatchInsertResult struct {
	Inserted int64         `json:"inserted"`
	Failed   int64         `json:"failed"`
	Duration time.Duration `json:"duration"`
}
