package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	invalidTextEncoding = "22P02"
)

const userColumns = "id::text, name, email, password_hash, is_active, created_at, updated_at"

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

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (name, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id::text, is_active, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(timeoutCtx, query, u.Name, u.Email, u.PasswordHash).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return mapError(err)
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := "SELECT " + userColumns + " FROM users WHERE email = $1 LIMIT 1"
	return r.getOne(timeoutCtx, query, email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := "SELECT " + userColumns + " FROM users WHERE id = $1 LIMIT 1"
	return r.getOne(timeoutCtx, query, id)
}

func (r *PostgresRepo) UpdateProfile(ctx context.Context, id, name, email string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := "UPDATE users SET name = $2, email = $3, updated_at = now() WHERE id = $1 RETURNING " + userColumns
	return r.getOne(timeoutCtx, query, id, name, email)
}

func (r *PostgresRepo) getOne(ctx context.Context, query string, args ...any) (User, error) {
	var u User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return User{}, mapError(err)
	}
	return u, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrAlreadyExists
		case invalidTextEncoding:
			// a malformed id never names a stored user
			return ErrNotFound
		}
	}
	return fmt.Errorf("users query: %w", err)
}
