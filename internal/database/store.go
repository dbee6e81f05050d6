package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// ErrNotInitialized is returned when a handle is requested before a
// successful Initialize.
var ErrNotInitialized = errors.New("store not initialized")

// InitReport describes how initialization went. A nil-error Initialize
// with a non-empty Warnings list means the store is degraded but usable.
type InitReport struct {
	Warnings       []string
	IndexesSkipped bool
	SeedDegraded   bool
	Healthy        bool
}

// Degraded reports whether any non-essential stage fell short.
func (r InitReport) Degraded() bool {
	return len(r.Warnings) > 0
}

// Store owns the on-device database lifecycle: open, create tables,
// create indexes, seed reference data, health-check. It is injected
// into repositories rather than held as a global, so tests can run
// each against its own file.
type Store struct {
	path string
	log  zerolog.Logger

	db    *sql.DB
	ready bool

	// Set when every index in a batch fails; later initializations
	// skip index creation instead of failing the same way again.
	indexesUnsupported bool

	tables  []tableDef
	indexes []string
}

// NewStore returns an unopened store bound to path. Call Initialize
// before handing the store to repositories.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path:    path,
		log:     log.With().Str("component", "store").Logger(),
		tables:  tableDefs,
		indexes: indexDefs,
	}
}

// NewMemoryStore returns a store backed by process memory only.
// Nothing survives Close; used as the bootstrap fallback.
func NewMemoryStore(log zerolog.Logger) *Store {
	return NewStore(MemoryPath, log)
}

// Path returns the backing file path (or MemoryPath).
func (s *Store) Path() string { return s.path }

// Ready reports whether Initialize has succeeded since the last Close.
func (s *Store) Ready() bool { return s.ready }

// Handle returns the underlying connection, or ErrNotInitialized.
func (s *Store) Handle() (*sql.DB, error) {
	if !s.ready || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// Initialize brings the store from whatever state it is in to a usable
// one: open, create tables, create indexes (best-effort), seed defaults
// (best-effort), health-check (advisory). Table creation failures are
// fatal; the returned report records everything that was skipped.
func (s *Store) Initialize(ctx context.Context) (InitReport, error) {
	var report InitReport

	// Idempotent open: discard any previous handle first.
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
		s.ready = false
	}
	db, err := open(s.path)
	if err != nil {
		return report, fmt.Errorf("open store: %w", err)
	}
	s.db = db

	if err := s.createTables(ctx); err != nil {
		_ = s.db.Close()
		s.db = nil
		return report, err
	}

	if s.indexesUnsupported {
		report.IndexesSkipped = true
		report.Warnings = append(report.Warnings, "index creation disabled for this process")
	} else if err := s.createIndexes(ctx, &report); err != nil {
		_ = s.db.Close()
		s.db = nil
		return report, err
	}

	s.seedDefaults(ctx, &report)

	report.Healthy = true
	if err := s.healthCheck(ctx); err != nil {
		report.Healthy = false
		report.Warnings = append(report.Warnings, fmt.Sprintf("health check: %v", err))
		s.log.Warn().Err(err).Msg("store initialized with failing health check")
	}

	s.ready = true
	return report, nil
}

// createTables creates every required table, one statement at a time.
// The first failure aborts initialization, named after its table.
func (s *Store) createTables(ctx context.Context) error {
	for _, t := range s.tables {
		if _, err := s.db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	return nil
}

// createIndexes creates each performance index independently. A single
// failure is logged and skipped; every index failing is treated as a
// sign of deeper corruption and is fatal, and index creation is not
// attempted again within this process.
func (s *Store) createIndexes(ctx context.Context, report *InitReport) error {
	var failed int
	var lastErr error
	for _, ddl := range s.indexes {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			failed++
			lastErr = err
			report.Warnings = append(report.Warnings, fmt.Sprintf("create index: %v", err))
			s.log.Warn().Err(err).Msg("skipping index")
		}
	}
	if len(s.indexes) > 0 && failed == len(s.indexes) {
		s.indexesUnsupported = true
		return fmt.Errorf("create indexes: all %d failed: %w", failed, lastErr)
	}
	if failed > 0 {
		report.IndexesSkipped = true
	}
	return nil
}

// seedDefaults inserts reference rows with INSERT OR IGNORE semantics,
// so re-seeding an already-seeded store is a no-op. Failures are
// recorded as warnings, never fatal: the store works with partial
// reference data.
func (s *Store) seedDefaults(ctx context.Context, report *InitReport) {
	now := Now()
	for _, c := range defaultCurrencies {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO currencies (code, symbol, name) VALUES (?, ?, ?)`,
			c.code, c.symbol, c.name)
		if err != nil {
			report.SeedDegraded = true
			report.Warnings = append(report.Warnings, fmt.Sprintf("seed currency %s: %v", c.code, err))
			s.log.Warn().Err(err).Str("currency", c.code).Msg("seed skipped")
		}
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO payment_methods
	 (id, type, name, is_default, is_active, color, icon, created_at, updated_at)
	VALUES (?, 'cash', ?, 1, 1, '#85bb65', 'banknote', ?, ?)`,
		defaultPaymentMethodID, defaultPaymentMethodName, now, now)
	if err != nil {
		report.SeedDegraded = true
		report.Warnings = append(report.Warnings, fmt.Sprintf("seed payment method: %v", err))
		s.log.Warn().Err(err).Msg("seed skipped")
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO user_preferences
	 (id, default_currency_code, theme, language, date_format, first_day_of_week, created_at, updated_at)
	VALUES (1, ?, 'system', 'en', '2006-01-02', 1, ?, ?)`,
		defaultCurrencyCode, now, now)
	if err != nil {
		report.SeedDegraded = true
		report.Warnings = append(report.Warnings, fmt.Sprintf("seed preferences: %v", err))
		s.log.Warn().Err(err).Msg("seed skipped")
	}
}

// HealthCheck verifies every required table exists and accepts a
// trivial query. Safe to call at any time after Initialize.
func (s *Store) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return ErrNotInitialized
	}
	return s.healthCheck(ctx)
}

func (s *Store) healthCheck(ctx context.Context) error {
	for _, t := range s.tables {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.name).Scan(&n); err != nil {
			return fmt.Errorf("table %s unqueryable: %w", t.name, err)
		}
	}
	return nil
}

// Reset discards all data and reinitializes. Safe to call at any
// point, including before a successful open.
func (s *Store) Reset(ctx context.Context) (InitReport, error) {
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
	s.ready = false
	if s.path != MemoryPath {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("could not remove store file")
		}
	}
	return s.Initialize(ctx)
}

// Close releases the underlying connection. Idempotent.
func (s *Store) Close() error {
	s.ready = false
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
