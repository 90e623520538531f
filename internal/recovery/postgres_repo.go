package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *PostgresRepo) CreateCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const query = `INSERT INTO password_otps (user_id, code, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(timeoutCtx, query, userID, code, expiresAt); err != nil {
		return fmt.Errorf("create recovery code: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Redeem(ctx context.Context, email, code, passwordHash string, now time.Time) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	// The row lock taken by UPDATE makes a concurrent redeem of the same code
	// re-check used = FALSE after this transaction commits and match nothing.
	const consume = `
		UPDATE password_otps o SET used = TRUE
		FROM users u
		WHERE o.user_id = u.id
			AND u.email = $1
			AND o.code = $2
			AND o.used = FALSE
			AND o.expires_at > $3
		RETURNING o.user_id::text`

	rows, err := tx.Query(timeoutCtx, consume, email, code, now)
	if err != nil {
		return fmt.Errorf("consume recovery code: %w", err)
	}
	userIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("consume recovery code: %w", err)
	}
	if len(userIDs) == 0 {
		return ErrInvalidCode
	}

	tag, err := tx.Exec(timeoutCtx, "UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1", userIDs[0], passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidCode
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		if errors.Is(err, pgx.ErrTxCommitRollback) {
			return ErrInvalidCode
		}
		return err
	}
	return nil
}
