// Package repository содержит хранилище сессий витрины в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/storefront-system/internal/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dbtx покрывает используемую часть pgxpool.Pool.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository хранит значения сессий в таблице session_values.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	db     dbtx
	delays []time.Duration
	now    func() time.Time
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		db:     pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
		now:    time.Now,
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(r.delays) {
			break
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// Get возвращает значение ключа сессии.
func (r *PostgresRepository) Get(ctx context.Context, sid, key string) (string, error) {
	var value string
	err := r.withRetry(ctx, func() error {
		return r.db.QueryRow(ctx,
			`SELECT value FROM session_values WHERE session_id = $1 AND key = $2`,
			sid, key,
		).Scan(&value)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", session.ErrNotFound
		}
		return "", fmt.Errorf("select session value: %w", err)
	}
	return value, nil
}

// Set сохраняет значение ключа сессии.
func (r *PostgresRepository) Set(ctx context.Context, sid, key, value string) error {
	err := r.withRetry(ctx, func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO session_values (session_id, key, value, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			sid, key, value,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert session value: %w", err)
	}
	return nil
}

// Delete удаляет ключи сессии.
func (r *PostgresRepository) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.withRetry(ctx, func() error {
		_, err := r.db.Exec(ctx,
			`DELETE FROM session_values WHERE session_id = $1 AND key = ANY($2)`,
			sid, keys,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete session values: %w", err)
	}
	return nil
}

// deleteExpiredSQL удаляет сессию целиком, если ни один её ключ не обновлялся после $1.
const deleteExpiredSQL = `DELETE FROM session_values
WHERE session_id IN (
	SELECT session_id FROM session_values
	GROUP BY session_id
	HAVING max(updated_at) < $1
)`

// DeleteExpired удаляет сессии, в которые ничего не записывалось дольше ttl.
// Возвращает число удалённых строк.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	var deleted int64
	err := r.withRetry(ctx, func() error {
		tag, err := r.db.Exec(ctx, deleteExpiredSQL, r.now().Add(-ttl))
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return deleted, nil
}
