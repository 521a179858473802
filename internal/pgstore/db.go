// Package pgstore is the PostgreSQL implementation of portal.Store.
package pgstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"legend-hub/internal/logger"
	"legend-hub/internal/portal"
)

/* ===================== CONNECT ===================== */

// MustDB connects to url, retrying for up to 30 seconds while the database
// comes up. It exits the process when no connection can be made.
func MustDB(url string, maxConns int32, log *logger.Logger) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatal("invalid database url", "error", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	var pool *pgxpool.Pool

	deadline := time.Now().Add(30 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				cancel()
				break
			}
			pool.Close()
			err = ctx.Err()
		}
		cancel()

		if time.Now().After(deadline) {
			log.Fatal("failed to connect DB after retries", "error", err)
		}
		log.Warn("database not ready, retrying", "error", err)
		time.Sleep(1 * time.Second)
	}

	return pool
}

/* ===================== STORE ===================== */

// Store runs portal units of work as Postgres transactions.
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func New(pool *pgxpool.Pool, log *logger.Logger) *Store {
	return &Store{pool: pool, log: log}
}

var _ portal.Store = (*Store)(nil)

func (s *Store) WithTx(ctx context.Context, fn func(tx portal.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return translate(err, "begin")
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(err, "commit")
	}
	return nil
}

// pgTx implements portal.Tx on an open transaction.
type pgTx struct {
	tx pgx.Tx
}

var _ portal.Tx = (*pgTx)(nil)

/* ===================== SQUIRREL HELPERS ===================== */

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func qExec(ctx context.Context, tx pgx.Tx, q sq.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return tx.Exec(ctx, sql, args...)
}

func qQuery(ctx context.Context, tx pgx.Tx, q sq.Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	return tx.Query(ctx, sql, args...)
}

// qRow runs q and scans its single row with scan.
func qRow[T any](ctx context.Context, tx pgx.Tx, q sq.Sqlizer, scan func(pgx.Row) (T, error)) (T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		var zero T
		return zero, err
	}
	return scan(tx.QueryRow(ctx, sql, args...))
}

// qList runs q and scans every row with scan.
func qList[T any](ctx context.Context, tx pgx.Tx, q sq.Sqlizer, scan func(pgx.Row) (T, error)) ([]T, error) {
	rows, err := qQuery(ctx, tx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
}

// qInsert runs an INSERT … RETURNING id and stores the id in dst.
func qInsert(ctx context.Context, tx pgx.Tx, q sq.InsertBuilder, dst *int64) error {
	sql, args, err := q.Suffix("RETURNING id").ToSql()
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, sql, args...).Scan(dst)
}

// qUpdate runs an UPDATE or DELETE and reports pgx.ErrNoRows when nothing
// matched.
func qUpdate(ctx context.Context, tx pgx.Tx, q sq.Sqlizer) error {
	tag, err := qExec(ctx, tx, q)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
