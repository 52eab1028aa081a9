package batch

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/raaihank/grammar-sentinel/internal/grammar"
)

// Record is one text submitted for correction
type Record struct {
	ID   string `parquet:"id" json:"id"`
	Text string `parquet:"text" json:"text"`
	Tier *int   `parquet:"tier,optional" json:"tier,omitempty"`
}

// Output is one line of the JSONL report, in input order
type Output struct {
	Row    int64           `json:"row"`
	ID     string          `json:"id"`
	Result *grammar.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ProcessingResult represents the result of processing a file
type ProcessingResult struct {
	TotalRecords    int64         `json:"total_records"`
	ProcessedOK     int64         `json:"processed_ok"`
	ProcessedFailed int64         `json:"processed_failed"`
	TotalFindings   int64         `json:"total_findings"`
	AverageScore    float64       `json:"average_score"`
	HistoryWritten  int64         `json:"history_written"`
	Duration        time.Duration `json:"duration"`
	CorrectionTime  time.Duration `json:"correction_time"`
	HistoryTime     time.Duration `json:"history_time"`
	Errors          []string      `json:"errors,omitempty"`

	scoreSum int64
}

// Config contains batch pipeline configuration
type Config struct {
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`
	Workers        int  `yaml:"workers" mapstructure:"workers"`
	DefaultTier    int  `yaml:"default_tier" mapstructure:"default_tier"`
	MaxTextLength  int  `yaml:"max_text_length" mapstructure:"max_text_length"`
	SkipErrors     bool `yaml:"skip_errors" mapstructure:"skip_errors"`
	WriteHistory   bool `yaml:"write_history" mapstructure:"write_history"`
	UpdateCache    bool `yaml:"update_cache" mapstructure:"update_cache"`
	ProgressReport int  `yaml:"progress_report" mapstructure:"progress_report"`
}

// ValidationError describes a record that could not be corrected
type ValidationError struct {
	Row     int64  `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime      time.Time `json:"start_time"`
	RecordsRead    int64     `json:"records_read"`
	RecordsValid   int64     `json:"records_valid"`
	RecordsInvalid int64     `json:"records_invalid"`
	CurrentBatch   int64     `json:"current_batch"`
	ProcessingRate float64   `json:"processing_rate"` // records per second
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSONL   FileFormat = "jsonl"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".parquet":
		return FormatParquet
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL
	default:
		return FormatCSV
	}
}
