package catalog

import (
	"context"
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

func (r *PostgresRepo) UpsertRecord(ctx context.Context, rec Record) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	const bookSQL = `
		INSERT INTO books (gutenberg_id, title, copyright, download_count, media_type)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (gutenberg_id) DO UPDATE SET
			title = EXCLUDED.title,
			copyright = EXCLUDED.copyright,
			download_count = EXCLUDED.download_count,
			media_type = EXCLUDED.media_type
		RETURNING id`

	var bookID int64
	err = tx.QueryRow(timeoutCtx, bookSQL, rec.GutenbergID, rec.Title, rec.Copyright, rec.DownloadCount, rec.MediaType).Scan(&bookID)
	if err != nil {
		return fmt.Errorf("upsert book %d: %w", rec.GutenbergID, err)
	}

	if err := replacePeople(timeoutCtx, tx, "book_authors", bookID, rec.Authors); err != nil {
		return fmt.Errorf("replace authors: %w", err)
	}
	if err := replacePeople(timeoutCtx, tx, "book_translators", bookID, rec.Translators); err != nil {
		return fmt.Errorf("replace translators: %w", err)
	}
	if err := replaceNamed(timeoutCtx, tx, bookshelves, bookID, rec.Bookshelves); err != nil {
		return fmt.Errorf("replace bookshelves: %w", err)
	}
	if err := replaceNamed(timeoutCtx, tx, languages, bookID, rec.Languages); err != nil {
		return fmt.Errorf("replace languages: %w", err)
	}
	if err := replaceNamed(timeoutCtx, tx, subjects, bookID, rec.Subjects); err != nil {
		return fmt.Errorf("replace subjects: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue("DELETE FROM formats WHERE book_id = $1", bookID)
	for mimeType, url := range rec.Formats {
		batch.Queue("INSERT INTO formats (book_id, mime_type, url) VALUES ($1, $2, $3)", bookID, mimeType, url)
	}
	batch.Queue("DELETE FROM summaries WHERE book_id = $1", bookID)
	for _, text := range rec.Summaries {
		batch.Queue("INSERT INTO summaries (book_id, text) VALUES ($1, $2)", bookID, text)
	}
	if err := tx.SendBatch(timeoutCtx, batch).Close(); err != nil {
		return fmt.Errorf("replace formats and summaries: %w", err)
	}

	return tx.Commit(timeoutCtx)
}

// replacePeople resolves each person by identity and swaps the book's
// relation set in table for exactly those persons.
func replacePeople(ctx context.Context, tx pgx.Tx, table string, bookID int64, people []Person) error {
	const personSQL = `
		INSERT INTO persons (name, birth_year, death_year)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT persons_identity_key DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	ids := make([]int64, 0, len(people))
	for _, p := range people {
		var id int64
		if err := tx.QueryRow(ctx, personSQL, p.Name, p.BirthYear, p.DeathYear).Scan(&id); err != nil {
			return fmt.Errorf("upsert person %q: %w", p.Name, err)
		}
		ids = append(ids, id)
	}
	return replaceLinks(ctx, tx, table, "person_id", bookID, ids)
}

type namedTable struct {
	table     string
	column    string
	linkTable string
	linkCol   string
}

var (
	bookshelves = namedTable{table: "bookshelves", column: "name", linkTable: "book_bookshelves", linkCol: "bookshelf_id"}
	languages   = namedTable{table: "languages", column: "code", linkTable: "book_languages", linkCol: "language_id"}
	subjects    = namedTable{table: "subjects", column: "name", linkTable: "book_subjects", linkCol: "subject_id"}
)

// replaceNamed reuses existing rows by their unique name and creates the rest.
func replaceNamed(ctx context.Context, tx pgx.Tx, t namedTable, bookID int64, names []string) error {
	lookupSQL := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s) VALUES ($1)
		ON CONFLICT (%[2]s) DO UPDATE SET %[2]s = EXCLUDED.%[2]s
		RETURNING id`, t.table, t.column)

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var id int64
		if err := tx.QueryRow(ctx, lookupSQL, name).Scan(&id); err != nil {
			return fmt.Errorf("upsert %s %q: %w", t.table, name, err)
		}
		ids = append(ids, id)
	}
	return replaceLinks(ctx, tx, t.linkTable, t.linkCol, bookID, ids)
}

func replaceLinks(ctx context.Context, tx pgx.Tx, table, column string, bookID int64, ids []int64) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE book_id = $1", table), bookID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	insertSQL := fmt.Sprintf(`
		INSERT INTO %[1]s (book_id, %[2]s)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, table, column)
	_, err := tx.Exec(ctx, insertSQL, bookID, ids)
	return err
}

func (r *PostgresRepo) ListGutenbergIDs(ctx context.Context) ([]int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, "SELECT gutenberg_id FROM books ORDER BY gutenberg_id")
	if err != nil {
		return nil, fmt.Errorf("list gutenberg ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *PostgresRepo) DeleteByGutenbergIDs(ctx context.Context, ids []int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, "DELETE FROM books WHERE gutenberg_id = ANY($1::bigint[])", ids)
	if err != nil {
		return 0, fmt.Errorf("delete books: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
