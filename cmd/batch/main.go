package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/batch"
	"github.com/raaihank/grammar-sentinel/internal/cache"
	"github.com/raaihank/grammar-sentinel/internal/config"
	"github.com/raaihank/grammar-sentinel/internal/grammar"
	"github.com/raaihank/grammar-sentinel/internal/history"
	"github.com/raaihank/grammar-sentinel/internal/logger"
	"github.com/raaihank/grammar-sentinel/internal/syntax"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Configuration file path")
		inputFile   = flag.String("input", "", "Input file (CSV, Parquet, or JSONL)")
		outputFile  = flag.String("output", "-", "JSONL report path, - for stdout")
		batchSize   = flag.Int("batch-size", 500, "Records per batch")
		workers     = flag.Int("workers", 0, "Number of worker goroutines (0 uses the config)")
		tier        = flag.Int("tier", 0, "Tier for records without one (0 uses the config)")
		strict      = flag.Bool("strict", false, "Abort on the first invalid record")
		noHistory   = flag.Bool("no-history", false, "Do not write corrections to the history store")
		warmCache   = flag.Bool("warm-cache", false, "Store results in the Redis result cache")
		showStats   = flag.Bool("stats", false, "Show history statistics and exit")
		pruneBefore = flag.Duration("prune-older-than", 0, "Delete history entries older than this and exit")
	)
	flag.Parse()

	if *inputFile == "" && !*showStats && *pruneBefore == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input essays.csv --output report.jsonl\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input essays.parquet --workers 8 --tier 9\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --prune-older-than 720h\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so the report can be piped from stdout.
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	services, err := initializeServices(cfg, log, !*noHistory || *showStats || *pruneBefore > 0, *warmCache)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.cleanup()

	switch {
	case *showStats:
		if err := showHistoryStats(ctx, services); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
	case *pruneBefore > 0:
		if services.history == nil {
			log.Fatal("History store is not enabled")
		}
		deleted, err := services.history.Prune(ctx, time.Now().Add(-*pruneBefore))
		if err != nil {
			log.Fatal("Failed to prune history", zap.Error(err))
		}
		fmt.Printf("Deleted %d corrections\n", deleted)
	default:
		batchConfig := &batch.Config{
			BatchSize:      *batchSize,
			Workers:        cfg.Batch.Workers,
			DefaultTier:    cfg.Grammar.DefaultTier,
			MaxTextLength:  cfg.Grammar.MaxTextLength,
			SkipErrors:     cfg.Batch.SkipErrors && !*strict,
			WriteHistory:   cfg.Batch.WriteHistory && !*noHistory,
			UpdateCache:    *warmCache,
			ProgressReport: 1000,
		}
		if *workers > 0 {
			batchConfig.Workers = *workers
		}
		if *tier > 0 {
			batchConfig.DefaultTier = *tier
		}

		if err := processFile(ctx, cfg, services, batchConfig, *inputFile, *outputFile, log); err != nil {
			log.Fatal("Batch processing failed", zap.Error(err))
		}
	}
}

// services holds all initialized services
type services struct {
	history *history.Store
	cache   *cache.ResultCache
}

func (s *services) cleanup() {
	if s.history != nil {
		s.history.Close()
	}
	if s.cache != nil {
		s.cache.Close()
	}
}

// initializeServices opens the stores the requested operation needs
func initializeServices(cfg *config.Config, log *logger.Logger, wantHistory, wantCache bool) (*services, error) {
	services := &services{}

	if wantHistory && cfg.History.Enabled {
		log.Info("Opening history store...")
		store, err := history.Open(&history.Config{
			Driver:          cfg.History.Driver,
			DSN:             cfg.History.DSN,
			MaxOpenConns:    cfg.History.MaxOpenConns,
			MaxIdleConns:    cfg.History.MaxIdleConns,
			ConnMaxLifetime: cfg.History.ConnMaxLifetime,
		}, log.WithComponent("history").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
		services.history = store
	}

	if wantCache {
		resultCache, err := cache.NewResultCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			services.cleanup()
			return nil, fmt.Errorf("failed to initialize result cache: %w", err)
		}
		services.cache = resultCache
	}

	return services, nil
}

// processFile corrects the input file and writes the report
func processFile(ctx context.Context, cfg *config.Config, services *services, batchConfig *batch.Config, inputFile, outputFile string, log *logger.Logger) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	catalog, err := grammar.LoadCatalog(nil, cfg.Grammar.RulePacks...)
	if err != nil {
		return fmt.Errorf("failed to load rule packs: %w", err)
	}
	var analyzer grammar.SentenceAnalyzer
	if cfg.Grammar.StructuralChecks {
		analyzer = syntax.NewHeuristic()
	}
	checker := grammar.New(catalog, analyzer, log.WithComponent("grammar").Logger)

	var out io.Writer = os.Stdout
	if outputFile != "-" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer file.Close()
		out = file
	}

	var recorder batch.Recorder
	if services.history != nil {
		recorder = services.history
	}

	pipeline := batch.NewPipeline(checker, recorder, services.cache, batchConfig, log.WithComponent("batch").Logger)
	result, err := pipeline.ProcessFile(ctx, inputFile, out)
	if err != nil {
		return fmt.Errorf("pipeline processing failed: %w", err)
	}

	log.Info("Batch processing completed",
		zap.String("file", inputFile),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("total_findings", result.TotalFindings),
		zap.Float64("average_score", result.AverageScore),
		zap.Int64("history_written", result.HistoryWritten),
		zap.Duration("total_duration", result.Duration),
		zap.Float64("records_per_second", float64(result.TotalRecords)/result.Duration.Seconds()))

	if len(result.Errors) > 0 {
		log.Warn("Processing completed with errors", zap.Int("errors", len(result.Errors)))
	}
	return nil
}

// showHistoryStats prints aggregate statistics of the history store
func showHistoryStats(ctx context.Context, services *services) error {
	if services.history == nil {
		return fmt.Errorf("history store is not enabled")
	}

	stats, err := services.history.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history stats: %w", err)
	}

	fmt.Printf("\n=== Correction History ===\n")
	fmt.Printf("Corrections:        %d\n", stats.TotalCorrections)
	fmt.Printf("Findings:           %d\n", stats.TotalFindings)
	fmt.Printf("Average Score:      %.1f\n", stats.AverageScore)
	fmt.Printf("Error-free Texts:   %d\n", stats.PerfectCount)

	fmt.Printf("\n=== By Band ===\n")
	for _, band := range []grammar.Band{grammar.BandBasic, grammar.BandIntermediate, grammar.BandAdvanced} {
		fmt.Printf("%-20s%d\n", band.Label()+":", stats.ByBand[string(band)])
	}

	fmt.Printf("\n=== Top Categories ===\n")
	for _, c := range stats.TopCategories {
		fmt.Printf("%-28s%d\n", c.Category+":", c.Count)
	}

	return nil
}
