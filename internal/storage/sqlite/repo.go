// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Records are inserted with a prepared statement inside one
// transaction per Save call; SQLite has no bulk-load API, but a single
// transaction keeps throughput acceptable for export-sized volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo

	"efetivo/internal/roster"
	"efetivo/internal/storage"
)

// DefaultTable is used when the configuration names no table.
const DefaultTable = "efetivo"

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.
	// "file:efetivo.db?cache=shared" or "efetivo.db".
	DSN string

	// Table is the destination table name.
	Table string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection and returns a Repository plus a
// cleanup function.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, func() { db.Close() }, nil
}

// EnsureSchema creates the destination table when missing. Sentinel-free
// nullable columns mirror storage.RowValues.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id             TEXT,
	name           TEXT NOT NULL,
	cpf            TEXT,
	birth_date     TIMESTAMP,
	age            INTEGER,
	work_unit_code TEXT,
	work_unit      TEXT NOT NULL,
	rank           TEXT NOT NULL,
	rank_order     INTEGER NOT NULL,
	start_date     TIMESTAMP,
	service_years  REAL,
	receives_bonus BOOLEAN NOT NULL
)`, r.cfg.Table)
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// Save inserts the records in one transaction and returns the number of rows
// written. A failed insert rolls back the whole call.
func (r *Repository) Save(ctx context.Context, recs []roster.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(storage.Columns)), ", ")
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.cfg.Table, strings.Join(storage.Columns, ", "), placeholders,
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range recs {
		if _, err := stmt.ExecContext(ctx, storage.RowValues(rec)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return int64(len(recs)), nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() { r.db.Close() }
