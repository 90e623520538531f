package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRunNotFound = errors.New("ingest run not found")

type Repository interface {
	CreateRun(ctx context.Context, run *Run) (string, error)
	UpdateRun(ctx context.Context, run *Run) error
	LatestRun(ctx context.Context) (Run, error)
}

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const sql = `
		INSERT INTO ingest_runs (started_at, status, feed_url)
		VALUES ($1, $2, $3)
		RETURNING id::text`

	var id string
	if err := r.db.QueryRow(timeoutCtx, sql, run.StartedAt, run.Status, run.FeedURL).Scan(&id); err != nil {
		return "", fmt.Errorf("create ingest run: %w", err)
	}
	return id, nil
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const sql = `
		UPDATE ingest_runs SET
			finished_at = $1,
			status = $2,
			books_seen = $3,
			books_upserted = $4,
			books_failed = $5,
			books_deleted = $6,
			error = $7
		WHERE id = $8`

	tag, err := r.db.Exec(timeoutCtx, sql, run.FinishedAt, run.Status, run.BooksSeen, run.BooksUpserted,
		run.BooksFailed, run.BooksDeleted, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("update ingest run %s: %w", run.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresRepo) LatestRun(ctx context.Context) (Run, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const sql = `
		SELECT id::text, started_at, finished_at, status, feed_url,
			books_seen, books_upserted, books_failed, books_deleted, error
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT 1`

	var run Run
	err := r.db.QueryRow(timeoutCtx, sql).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.FeedURL,
		&run.BooksSeen, &run.BooksUpserted, &run.BooksFailed, &run.BooksDeleted, &run.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest ingest run: %w", err)
	}
	return run, nil
}
