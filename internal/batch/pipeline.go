package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/raaihank/grammar-sentinel/internal/cache"
	"github.com/raaihank/grammar-sentinel/internal/grammar"
	"github.com/raaihank/grammar-sentinel/internal/history"
)

// Recorder stores finished corrections
type Recorder interface {
	RecordBatch(ctx context.Context, entries []*history.Entry) (*history.BatchInsertResult, error)
}

// Pipeline corrects every record of a file and writes a JSONL report
type Pipeline struct {
	checker  *grammar.Checker
	recorder Recorder
	cache    *cache.ResultCache
	config   *Config
	logger   *zap.Logger
	stats    *ProcessingStats
	mu       sync.RWMutex
}

// slot is one input row; exactly one of record and err is set
type slot struct {
	row    int64
	record *Record
	err    error
	result *grammar.Result
}

// NewPipeline creates a new batch pipeline. recorder and resultCache may be nil.
func NewPipeline(
	checker *grammar.Checker,
	recorder Recorder,
	resultCache *cache.ResultCache,
	config *Config,
	logger *zap.Logger,
) *Pipeline {
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.ProgressReport <= 0 {
		config.ProgressReport = 1000
	}
	return &Pipeline{
		checker:  checker,
		recorder: recorder,
		cache:    resultCache,
		config:   config,
		logger:   logger,
		stats: &ProcessingStats{
			StartTime: time.Now(),
		},
	}
}

// ProcessFile corrects a CSV, Parquet or JSONL file and writes one Output per row to out
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string, out io.Writer) (*ProcessingResult, error) {
	format := DetectFileFormat(filePath)

	p.logger.Info("Starting batch pipeline",
		zap.String("file", filePath),
		zap.String("format", string(format)),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.Workers))

	reader, err := openReader(filePath, format)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return p.process(ctx, reader, out)
}

// process drains reader in batches
func (p *Pipeline) process(ctx context.Context, reader recordReader, out io.Writer) (*ProcessingResult, error) {
	start := time.Now()
	result := &ProcessingResult{}
	encoder := json.NewEncoder(out)

	p.resetStats()

	for {
		select {
		case <-ctx.Done():
			return p.finish(result, start), ctx.Err()
		default:
		}

		slots, err := p.readBatch(reader)
		if err != nil {
			return p.finish(result, start), err
		}
		if len(slots) == 0 {
			break
		}

		if err := p.processBatch(ctx, slots, result, encoder); err != nil {
			return p.finish(result, start), err
		}

		p.mu.Lock()
		p.stats.CurrentBatch++
		p.mu.Unlock()

		if result.TotalRecords/int64(p.config.ProgressReport) != (result.TotalRecords-int64(len(slots)))/int64(p.config.ProgressReport) {
			p.reportProgress(result)
		}
	}

	p.finish(result, start)
	p.logger.Info("Batch pipeline completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Float64("average_score", result.AverageScore),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("correction_time", result.CorrectionTime),
		zap.Duration("history_time", result.HistoryTime))

	return result, nil
}

func (p *Pipeline) finish(result *ProcessingResult, start time.Time) *ProcessingResult {
	result.Duration = time.Since(start)
	if result.ProcessedOK > 0 {
		result.AverageScore = float64(result.scoreSum) / float64(result.ProcessedOK)
	}
	return result
}

// readBatch reads up to BatchSize rows. Rows that fail validation are kept
// as error slots so the report stays in input order.
func (p *Pipeline) readBatch(reader recordReader) ([]*slot, error) {
	var slots []*slot
	for len(slots) < p.config.BatchSize {
		record, row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		var invalid *ValidationError
		if err != nil && !errors.As(err, &invalid) {
			return nil, err
		}
		if err == nil {
			err = p.validateRecord(record, row)
		}

		p.mu.Lock()
		p.stats.RecordsRead++
		if err != nil {
			p.stats.RecordsInvalid++
		} else {
			p.stats.RecordsValid++
		}
		p.mu.Unlock()

		if err != nil {
			if !p.config.SkipErrors {
				return nil, fmt.Errorf("invalid record: %w", err)
			}
			p.logger.Debug("Skipping invalid record", zap.Error(err))
			slots = append(slots, &slot{row: row, err: err})
			continue
		}

		if record.ID == "" {
			record.ID = strconv.FormatInt(row, 10)
		}
		slots = append(slots, &slot{row: row, record: record})
	}
	return slots, nil
}

// processBatch corrects the valid slots concurrently, then writes the report
// lines and history entries in input order
func (p *Pipeline) processBatch(ctx context.Context, slots []*slot, result *ProcessingResult, encoder *json.Encoder) error {
	correctionStart := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for _, s := range slots {
		if s.record == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tier := p.config.DefaultTier
			if s.record.Tier != nil {
				tier = *s.record.Tier
			}
			s.result = p.checker.Correct(gctx, s.record.Text, tier)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	result.CorrectionTime += time.Since(correctionStart)

	fingerprint := p.checker.Catalog().Fingerprint()
	var entries []*history.Entry

	for _, s := range slots {
		result.TotalRecords++
		line := Output{Row: s.row}

		if s.err != nil {
			result.ProcessedFailed++
			result.Errors = append(result.Errors, s.err.Error())
			line.Error = s.err.Error()
		} else {
			result.ProcessedOK++
			result.TotalFindings += int64(len(s.result.Findings))
			result.scoreSum += int64(s.result.Score)
			line.ID = s.record.ID
			line.Result = s.result

			if p.config.UpdateCache {
				if err := p.cache.Store(ctx, fingerprint, s.result.Band, s.result); err != nil {
					p.logger.Warn("Failed to update cache", zap.Error(err))
				}
			}
			if p.config.WriteHistory && p.recorder != nil {
				entry, err := history.NewEntry(s.result, fingerprint, "batch", s.record.ID)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			}
		}

		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if len(entries) > 0 {
		historyStart := time.Now()
		inserted, err := p.recorder.RecordBatch(ctx, entries)
		if err != nil {
			if !p.config.SkipErrors {
				return fmt.Errorf("history batch insert failed: %w", err)
			}
			p.logger.Error("History batch insert failed", zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.HistoryWritten += inserted.Inserted
		}
		result.HistoryTime += time.Since(historyStart)
	}

	p.logger.Debug("Batch processed",
		zap.Int("batch_size", len(slots)),
		zap.Duration("correction_time", time.Since(correctionStart)))

	return nil
}

// validateRecord rejects text the checker cannot take. Blank text is valid and scores 0.
func (p *Pipeline) validateRecord(record *Record, row int64) error {
	if !utf8.ValidString(record.Text) {
		return &ValidationError{Row: row, Field: "text", Message: "invalid UTF-8"}
	}
	if p.config.MaxTextLength > 0 {
		if n := utf8.RuneCountInString(record.Text); n > p.config.MaxTextLength {
			return &ValidationError{Row: row, Field: "text", Message: fmt.Sprintf("text too long (%d characters)", n)}
		}
	}
	return nil
}

// reportProgress reports current processing progress
func (p *Pipeline) reportProgress(result *ProcessingResult) {
	stats := p.GetStats()
	elapsed := time.Since(stats.StartTime)
	rate := float64(result.TotalRecords) / elapsed.Seconds()

	p.mu.Lock()
	p.stats.ProcessingRate = rate
	p.mu.Unlock()

	p.logger.Info("Processing progress",
		zap.Int64("records_processed", result.TotalRecords),
		zap.Int64("records_ok", result.ProcessedOK),
		zap.Int64("records_failed", result.ProcessedFailed),
		zap.Float64("rate_per_sec", rate),
		zap.Duration("elapsed", elapsed))
}

// resetStats resets processing statistics
func (p *Pipeline) resetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats = &ProcessingStats{
		StartTime: time.Now(),
	}
}

// GetStats returns current processing statistics
func (p *Pipeline) GetStats() *ProcessingStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := *p.stats
	return &stats
}
