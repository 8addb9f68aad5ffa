// Package postgres loads the enriched table into a PostgreSQL table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

const (
	connectAttempts = 5
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 5 * time.Second
)

// Sink replaces a PostgreSQL table with the enriched rows on every run.
// It implements pipeline.TableSink.
type Sink struct {
	pool   *pgxpool.Pool
	table  pgx.Identifier
	logger *slog.Logger
}

// NewSink connects to dsn, retrying the initial ping with exponential backoff.
func NewSink(ctx context.Context, dsn, table string, logger *slog.Logger) (*Sink, error) {
	ident, err := parseIdentifier(table)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt == connectAttempts || ctx.Err() != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempt, err)
		}
		logger.Warn("postgres not reachable, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			pool.Close()
			return nil, ctx.Err()
		}
		backoff = sharedretry.NextBackoff(backoff, maxBackoff)
	}

	return &Sink{pool: pool, table: ident, logger: logger}, nil
}

func (s *Sink) Name() string { return "postgres" }

// WriteTable drops and recreates the target table and bulk-loads every row
// with COPY inside one transaction, so readers see either the previous run or
// this one.
func (s *Sink) WriteTable(ctx context.Context, t *domain.EnrichedTable) error {
	cols := t.Columns()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+s.table.Sanitize()); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(s.table, cols)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	n, err := tx.CopyFrom(ctx, s.table, columnNames(cols), pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
		return rowValues(t, i), nil
	}))
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("postgres table loaded", "table", s.table.Sanitize(), "rows", n)
	return nil
}

// Close releases the connection pool.
func (s *Sink) Close() {
	s.pool.Close()
}

// parseIdentifier splits an optionally schema-qualified table name.
func parseIdentifier(table string) (pgx.Identifier, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	for _, p := range parts {
		if p == "" {
			return nil, errors.New("table name must not be empty")
		}
	}
	return pgx.Identifier(parts), nil
}

func sqlType(k domain.ColumnKind) string {
	switch k {
	case domain.KindDate:
		return "date"
	case domain.KindFloat:
		return "double precision"
	case domain.KindFlag:
		return "boolean"
	case domain.KindInt:
		return "bigint"
	default:
		return "text"
	}
}

func createTableSQL(table pgx.Identifier, cols []domain.Column) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(table.Sanitize())
	b.WriteString(" (")
	b.WriteString(pgx.Identifier{domain.ColEventID}.Sanitize())
	b.WriteString(" text PRIMARY KEY")
	for _, c := range cols {
		b.WriteString(", ")
		b.WriteString(pgx.Identifier{c.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(sqlType(c.Kind))
	}
	b.WriteString(")")
	return b.String()
}

func columnNames(cols []domain.Column) []string {
	names := make([]string, 0, len(cols)+1)
	names = append(names, domain.ColEventID)
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

func rowValues(t *domain.EnrichedTable, i int) []any {
	vals := t.Values(i)
	row := make([]any, 0, len(vals)+1)
	row = append(row, domain.EventID(i, t.Rows[i].Event))
	for _, v := range vals {
		if d, ok := v.(domain.Date); ok {
			v = d.Time()
		}
		row = append(row, v)
	}
	return row
}
