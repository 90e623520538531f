package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
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

// List runs the count and the page query concurrently under the same
// predicate, then loads the related collections for the page.
func (r *PostgresRepo) List(ctx context.Context, f Filter, p Page) (Result, error) {
	q := buildListQuery(f)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		count int
		books []Book
	)
	g, gctx := errgroup.WithContext(timeoutCtx)
	g.Go(func() error {
		if err := r.db.QueryRow(gctx, q.countSQL(), q.args...).Scan(&count); err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sql, args := q.pageSQL(p)
		rows, err := r.db.Query(gctx, sql, args...)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		books, err = pgx.CollectRows(rows, scanBook)
		if err != nil {
			return fmt.Errorf("scan books: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if err := r.hydrate(timeoutCtx, books); err != nil {
		return Result{}, err
	}
	return Result{Count: count, Books: books}, nil
}

// GetByGutenbergID ignores listing eligibility.
func (r *PostgresRepo) GetByGutenbergID(ctx context.Context, id int) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, "SELECT "+pageColumns+" FROM books b WHERE b.gutenberg_id = $1", id)
	if err != nil {
		return Book{}, fmt.Errorf("get book: %w", err)
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book: %w", err)
	}

	books := []Book{b}
	if err := r.hydrate(timeoutCtx, books); err != nil {
		return Book{}, err
	}
	return books[0], nil
}

func scanBook(row pgx.CollectableRow) (Book, error) {
	b := newBook(0)
	if err := row.Scan(&b.rowID, &b.ID, &b.Title, &b.Copyright, &b.DownloadCount, &b.MediaType); err != nil {
		return Book{}, err
	}
	return b, nil
}

const (
	authorsSQL = `SELECT ba.book_id, p.name, p.birth_year, p.death_year
		FROM book_authors ba JOIN persons p ON p.id = ba.person_id
		WHERE ba.book_id = ANY($1) ORDER BY p.id`
	translatorsSQL = `SELECT bt.book_id, p.name, p.birth_year, p.death_year
		FROM book_translators bt JOIN persons p ON p.id = bt.person_id
		WHERE bt.book_id = ANY($1) ORDER BY p.id`
	bookshelvesSQL = `SELECT bb.book_id, s.name
		FROM book_bookshelves bb JOIN bookshelves s ON s.id = bb.bookshelf_id
		WHERE bb.book_id = ANY($1) ORDER BY s.id`
	languagesSQL = `SELECT bl.book_id, l.code
		FROM book_languages bl JOIN languages l ON l.id = bl.language_id
		WHERE bl.book_id = ANY($1) ORDER BY l.id`
	subjectsSQL = `SELECT bs.book_id, s.name
		FROM book_subjects bs JOIN subjects s ON s.id = bs.subject_id
		WHERE bs.book_id = ANY($1) ORDER BY s.id`
	formatsSQL   = `SELECT book_id, mime_type, url FROM formats WHERE book_id = ANY($1) ORDER BY id`
	summariesSQL = `SELECT book_id, text FROM summaries WHERE book_id = ANY($1) ORDER BY id`
)

// hydrate fills the related collections of books in one round trip.
func (r *PostgresRepo) hydrate(ctx context.Context, books []Book) error {
	if len(books) == 0 {
		return nil
	}

	index := make(map[int64]*Book, len(books))
	ids := make([]int64, 0, len(books))
	for i := range books {
		index[books[i].rowID] = &books[i]
		ids = append(ids, books[i].rowID)
	}

	batch := &pgx.Batch{}
	queuePeople(batch, authorsSQL, ids, func(b *Book, p Person) { b.Authors = append(b.Authors, p) }, index)
	queuePeople(batch, translatorsSQL, ids, func(b *Book, p Person) { b.Translators = append(b.Translators, p) }, index)
	queueNames(batch, bookshelvesSQL, ids, func(b *Book, s string) { b.Bookshelves = append(b.Bookshelves, s) }, index)
	queueNames(batch, languagesSQL, ids, func(b *Book, s string) { b.Languages = append(b.Languages, s) }, index)
	queueNames(batch, subjectsSQL, ids, func(b *Book, s string) { b.Subjects = append(b.Subjects, s) }, index)
	queueNames(batch, summariesSQL, ids, func(b *Book, s string) { b.Summaries = append(b.Summaries, s) }, index)

	batch.Queue(formatsSQL, ids).Query(func(rows pgx.Rows) error {
		var (
			bookID         int64
			mimeType, link string
		)
		_, err := pgx.ForEachRow(rows, []any{&bookID, &mimeType, &link}, func() error {
			if b, ok := index[bookID]; ok {
				b.Formats[mimeType] = link
			}
			return nil
		})
		return err
	})

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("load book relations: %w", err)
	}
	return nil
}

func queuePeople(batch *pgx.Batch, sql string, ids []int64, add func(*Book, Person), index map[int64]*Book) {
	batch.Queue(sql, ids).Query(func(rows pgx.Rows) error {
		var (
			bookID int64
			p      Person
		)
		_, err := pgx.ForEachRow(rows, []any{&bookID, &p.Name, &p.BirthYear, &p.DeathYear}, func() error {
			if b, ok := index[bookID]; ok {
				add(b, p)
			}
			p = Person{}
			return nil
		})
		return err
	})
}

func queueNames(batch *pgx.Batch, sql string, ids []int64, add func(*Book, string), index map[int64]*Book) {
	batch.Queue(sql, ids).Query(func(rows pgx.Rows) error {
		var (
			bookID int64
			name   string
		)
		_, err := pgx.ForEachRow(rows, []any{&bookID, &name}, func() error {
			if b, ok := index[bookID]; ok {
				add(b, name)
			}
			return nil
		})
		return err
	})
}
