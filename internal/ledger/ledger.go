// Package ledger — центральный журнал запусков в Postgres.
//
// Авторитетный run record живёт файлом в results-папке датасета;
// журнал лишь зеркалирует отправки и очистки в общую БД пайплайна,
// чтобы их было видно поверх всех датасетов. Интеграция опциональна:
// без DB_URL этап работает, записи просто не делаются.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool создаёт пул соединений с БД пайплайна.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Ledger пишет записи о работе этапа.
//
// Все методы nil-безопасны: nil-Ledger означает выключенную
// интеграцию, запись молча пропускается.
type Ledger struct {
	pool *pgxpool.Pool
}

// New создаёт Ledger поверх готового пула.
func New(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// EnsureSchema создаёт таблицы журнала, если их ещё нет.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if l == nil || l.pool == nil {
		return nil
	}

	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS dispatch_submissions (
			id             UUID PRIMARY KEY,
			dataset        TEXT        NOT NULL,
			channel        TEXT        NOT NULL,
			run_id         TEXT        NOT NULL,
			output_prefix  TEXT        NOT NULL,
			submitted_at   TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS cleanup_events (
			id              UUID PRIMARY KEY,
			dataset         TEXT        NOT NULL,
			prefix          TEXT        NOT NULL,
			deleted_objects INT         NOT NULL,
			cleaned_at      TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// RecordSubmission фиксирует успешную отправку запуска.
func (l *Ledger) RecordSubmission(ctx context.Context, dataset, channel, runID, outputPrefix string, submittedAt time.Time) error {
	if l == nil || l.pool == nil {
		return nil
	}

	query := `
		INSERT INTO dispatch_submissions (id, dataset, channel, run_id, output_prefix, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := l.pool.Exec(ctx, query,
		uuid.New(),
		dataset,
		channel,
		runID,
		outputPrefix,
		submittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// RecordCleanup фиксирует очистку одного префикса.
func (l *Ledger) RecordCleanup(ctx context.Context, dataset, prefix string, deletedObjects int) error {
	if l == nil || l.pool == nil {
		return nil
	}

	query := `
		INSERT INTO cleanup_events (id, dataset, prefix, deleted_objects, cleaned_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := l.pool.Exec(ctx, query,
		uuid.New(),
		dataset,
		prefix,
		deletedObjects,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert cleanup event: %w", err)
	}
	return nil
}
