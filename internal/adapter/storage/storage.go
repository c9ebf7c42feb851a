package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/catalog-imgcheck/pkg/retry"
)

const (
	pingAttempts = 3
	pingDelay    = time.Second
)

type sqldb interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLDB struct {
	*sql.DB
}

// NewSQLDB opens a pgx backed [sql.DB] and waits until it answers a ping.
func NewSQLDB(ctx context.Context, dsn string) (SQLDB, error) {
	const op = "NewSQLDB"
	log := slog.With("op", op)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: %w", op, err)
	}

	s := SQLDB{db}
	if err := s.ping(ctx); err != nil {
		_ = db.Close()
		return SQLDB{}, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available")
	return s, nil
}

func (s SQLDB) ping(ctx context.Context) error {
	cfg := retry.RetryConfig{
		MaxAttempts: pingAttempts,
		Backoff:     retry.LinearBackoff(pingDelay),
	}
	return retry.Do(ctx, cfg, func() error {
		return s.PingContext(ctx)
	})
}

func (s SQLDB) Close() {
	const op = "SQLDB.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.DB.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}
