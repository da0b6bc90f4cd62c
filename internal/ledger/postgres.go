package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the ledger uses. pgxmock satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS posted_screenshots (
		page_url  TEXT PRIMARY KEY,
		posted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// PostgresLedger records posted identifiers in a relational table. Unlike the
// file store, Persist upserts per identifier instead of rewriting a snapshot.
type PostgresLedger struct {
	memberSet
	db DB
}

// NewPostgresLedger connects to dsn and ensures the backing table exists.
func NewPostgresLedger(ctx context.Context, dsn string) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	l := &PostgresLedger{memberSet: newMemberSet(), db: pool}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure ledger table: %w", err)
	}
	return l, nil
}

// NewPostgresLedgerWithDB wraps an existing pool. Used by tests.
func NewPostgresLedgerWithDB(db DB) *PostgresLedger {
	return &PostgresLedger{memberSet: newMemberSet(), db: db}
}

// Load replaces the in-memory set with all recorded identifiers.
func (l *PostgresLedger) Load(ctx context.Context) error {
	rows, err := l.db.Query(ctx, `SELECT page_url FROM posted_screenshots`)
	if err != nil {
		return fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan ledger row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ledger rows: %w", err)
	}
	l.replace(ids)
	return nil
}

// Persist upserts every in-memory identifier.
func (l *PostgresLedger) Persist(ctx context.Context) error {
	for _, id := range l.snapshot() {
		_, err := l.db.Exec(ctx,
			`INSERT INTO posted_screenshots (page_url) VALUES ($1) ON CONFLICT DO NOTHING`, id)
		if err != nil {
			return fmt.Errorf("insert ledger row: %w", err)
		}
	}
	return nil
}

// Reset clears the set and truncates the table.
func (l *PostgresLedger) Reset(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, `DELETE FROM posted_screenshots`); err != nil {
		return fmt.Errorf("clear ledger table: %w", err)
	}
	l.clear()
	return nil
}

// Close releases the connection pool.
func (l *PostgresLedger) Close() {
	l.db.Close()
}
