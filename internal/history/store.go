package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a correction id is unknown
var ErrNotFound = errors.New("correction not found")

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store persists corrections in SQLite or PostgreSQL
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config contains database configuration
type Config struct {
	Driver          string        `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DSN             string        `yaml:"dsn" mapstructure:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS corrections (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		tier INTEGER NOT NULL,
		band TEXT NOT NULL,
		original_text TEXT NOT NULL,
		corrected_text TEXT NOT NULL,
		score INTEGER NOT NULL,
		finding_count INTEGER NOT NULL,
		findings TEXT NOT NULL,
		feedback TEXT NOT NULL,
		catalog_fingerprint TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_corrections_created_at ON corrections (created_at)`,
	`CREATE TABLE IF NOT EXISTS correction_findings (
		correction_id TEXT NOT NULL REFERENCES corrections (id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		rule_id TEXT NOT NULL,
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		PRIMARY KEY (correction_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_correction_findings_category ON correction_findings (category)`,
}

const insertCorrection = `
	INSERT INTO corrections (
		id, request_id, source, tier, band, original_text, corrected_text,
		score, finding_count, findings, feedback, catalog_fingerprint, created_at
	) VALUES (
		:id, :request_id, :source, :tier, :band, :original_text, :corrected_text,
		:score, :finding_count, :findings, :feedback, :catalog_fingerprint, :created_at
	)`

const insertFinding = `
	INSERT INTO correction_findings (correction_id, position, rule_id, category, severity)
	VALUES (?, ?, ?, ?, ?)`

// Open connects to the database and creates the schema if needed
func Open(config *Config, logger *zap.Logger) (*Store, error) {
	driver, err := driverName(config.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("History store initialized successfully",
		zap.String("driver", driver),
		zap.String("dsn", maskDatabaseURL(config.DSN)),
		zap.Int("max_open_conns", config.MaxOpenConns))

	return store, nil
}

func driverName(name string) (string, error) {
	switch name {
	case "sqlite", "":
		return "sqlite", nil
	case "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported history driver: %s", name)
	}
}

func (s *Store) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema migration failed: %w", err)
		}
	}
	return nil
}

// Record stores one correction and its findings atomically
func (s *Store) Record(ctx context.Context, entry *Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEntry(ctx, tx, entry); err != nil {
		s.logger.Error("Failed to record correction", zap.Error(err), zap.String("id", entry.ID))
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit correction: %w", err)
	}

	s.logger.Debug("Correction recorded",
		zap.String("id", entry.ID),
		zap.Int("findings", entry.FindingCount))

	return nil
}

// RecordBatch stores many corrections in a single transaction
func (s *Store) RecordBatch(ctx context.Context, entries []*Entry) (*BatchInsertResult, error) {
	if len(entries) == 0 {
		return &BatchInsertResult{}, nil
	}

	start := time.Now()
	result := &BatchInsertResult{}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if err := insertEntry(ctx, tx, entry); err != nil {
			result.Failed = int64(len(entries))
			s.logger.Error("Batch insert failed", zap.Error(err))
			return result, fmt.Errorf("batch insert failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		result.Failed = int64(len(entries))
		return result, fmt.Errorf("failed to commit batch: %w", err)
	}

	result.Inserted = int64(len(entries))
	result.Duration = time.Since(start)

	s.logger.Info("Batch insert completed",
		zap.Int64("inserted", result.Inserted),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func insertEntry(ctx context.Context, tx *sqlx.Tx, entry *Entry) error {
	if _, err := tx.NamedExecContext(ctx, insertCorrection, entry); err != nil {
		return fmt.Errorf("failed to insert correction: %w", err)
	}
	query := tx.Rebind(insertFinding)
	for i, f := range entry.Findings {
		if _, err := tx.ExecContext(ctx, query, entry.ID, i, f.RuleID, string(f.Category), string(f.Severity)); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}
	return nil
}

// Get returns a stored correction by id
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	err := s.db.GetContext(ctx, &entry, s.db.Rebind(`SELECT * FROM corrections WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get correction: %w", err)
	}
	if err := entry.decodeFindings(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns stored corrections, newest first
func (s *Store) List(ctx context.Context, options *ListOptions) ([]*Entry, error) {
	if options == nil {
		options = &ListOptions{}
	}
	limit := options.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	var where []string
	var args []interface{}
	if options.Band != "" {
		where = append(where, "band = ?")
		args = append(args, options.Band)
	}
	if options.Source != "" {
		where = append(where, "source = ?")
		args = append(args, options.Source)
	}

	query := "SELECT * FROM corrections"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, max(options.Offset, 0))

	var entries []*Entry
	if err := s.db.SelectContext(ctx, &entries, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}
	for _, e := range entries {
		if err := e.decodeFindings(); err != nil {
			s.logger.Warn("Skipping undecodable findings", zap.Error(err))
		}
	}
	return entries, nil
}

// GetStats aggregates the stored corrections
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByBand:     make(map[string]int64),
		BySeverity: make(map[string]int64),
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(finding_count), 0),
			COALESCE(AVG(score), 0),
			COUNT(CASE WHEN finding_count = 0 THEN 1 END)
		FROM corrections`
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalCorrections,
		&stats.TotalFindings,
		&stats.AverageScore,
		&stats.PerfectCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get correction stats: %w", err)
	}

	if err := s.countInto(ctx, stats.ByBand, `SELECT band, COUNT(*) FROM corrections GROUP BY band`); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, stats.BySeverity, `SELECT severity, COUNT(*) FROM correction_findings GROUP BY severity`); err != nil {
		return nil, err
	}

	categoryQuery := `
		SELECT category, COUNT(*) AS count
		FROM correction_findings
		GROUP BY category
		ORDER BY count DESC, category
		LIMIT 10`
	if err := s.db.SelectContext(ctx, &stats.TopCategories, categoryQuery); err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}

	return stats, nil
}

func (s *Store) countInto(ctx context.Context, into map[string]int64, query string) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
		into[key] = count
	}
	return rows.Err()
}

// Prune deletes corrections created before cutoff and returns how many were removed
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cutoff = cutoff.UTC()
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM correction_findings
		WHERE correction_id IN (SELECT id FROM corrections WHERE created_at < ?)`), cutoff); err != nil {
		return 0, fmt.Errorf("failed to prune findings: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM corrections WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune corrections: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		s.logger.Warn("Could not get rows affected", zap.Error(err))
	}
	s.logger.Info("History pruned", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	return deleted, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks the password in a database URL for logging
func maskDatabaseURL(url string) string {
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	userInfo := url[:at]
	colon := strings.LastIndex(userInfo, ":")
	if colon < 0 || colon <= strings.Index(userInfo, "//") {
		return url
	}
	return userInfo[:colon+1] + "***" + url[at:]
}
