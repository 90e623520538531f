package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gutendex/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestPostgresRepo_UpsertRecord(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPostgresRepo(db, 5*time.Second)
	ctx := context.Background()

	rec := Record{
		GutenbergID:   84,
		Title:         strPtr("Frankenstein"),
		DownloadCount: intPtr(100),
		MediaType:     "Text",
		Authors:       []Person{{Name: "Shelley, Mary Wollstonecraft", BirthYear: intPtr(1797), DeathYear: intPtr(1851)}},
		Bookshelves:   []string{"Gothic Fiction"},
		Languages:     []string{"en"},
		Subjects:      []string{"Monsters -- Fiction"},
		Formats:       map[string]string{"text/html": "https://example.org/84.html"},
		Summaries:     []string{"First summary"},
	}
	require.NoError(t, repo.UpsertRecord(ctx, rec))

	rec.Bookshelves = []string{"Gothic Fiction", "Science Fiction"}
	rec.Formats = map[string]string{"application/epub+zip": "https://example.org/84.epub"}
	rec.Summaries = []string{"Second summary"}
	require.NoError(t, repo.UpsertRecord(ctx, rec))

	other := Record{
		GutenbergID: 1342,
		Title:       strPtr("Pride and Prejudice"),
		MediaType:   "Text",
		Authors:     []Person{{Name: "Shelley, Mary Wollstonecraft", BirthYear: intPtr(1797), DeathYear: intPtr(1851)}},
		Bookshelves: []string{"Gothic Fiction"},
		Languages:   []string{"en"},
	}
	require.NoError(t, repo.UpsertRecord(ctx, other))

	count := func(sql string, args ...any) int {
		var n int
		require.NoError(t, db.QueryRow(ctx, sql, args...).Scan(&n))
		return n
	}
	assert.Equal(t, 2, count("SELECT COUNT(*) FROM books"))
	assert.Equal(t, 1, count("SELECT COUNT(*) FROM persons"), "identical persons are reused")
	assert.Equal(t, 2, count("SELECT COUNT(*) FROM bookshelves"))
	assert.Equal(t, 1, count("SELECT COUNT(*) FROM languages"))
	assert.Equal(t, 2, count("SELECT COUNT(*) FROM book_bookshelves bb JOIN books b ON b.id = bb.book_id WHERE b.gutenberg_id = 84"))
	assert.Equal(t, 1, count("SELECT COUNT(*) FROM formats f JOIN books b ON b.id = f.book_id WHERE b.gutenberg_id = 84 AND f.mime_type = 'application/epub+zip'"))
	assert.Equal(t, 1, count("SELECT COUNT(*) FROM summaries s JOIN books b ON b.id = s.book_id WHERE b.gutenberg_id = 84"))

	ids, err := repo.ListGutenbergIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{84, 1342}, ids)

	n, err := repo.DeleteByGutenbergIDs(ctx, []int{84})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, count("SELECT COUNT(*) FROM formats"))
	assert.Equal(t, 0, count("SELECT COUNT(*) FROM summaries"))
	assert.Equal(t, 1, count("SELECT COUNT(*) FROM book_authors"))
}

func TestPostgresRepo_PersonsWithNullYears(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPostgresRepo(db, 5*time.Second)
	ctx := context.Background()

	anon := Person{Name: "Anonymous"}
	require.NoError(t, repo.UpsertRecord(ctx, Record{GutenbergID: 1, MediaType: "Text", Authors: []Person{anon}}))
	require.NoError(t, repo.UpsertRecord(ctx, Record{GutenbergID: 2, MediaType: "Text", Authors: []Person{anon}}))

	var n int
	require.NoError(t, db.QueryRow(ctx, "SELECT COUNT(*) FROM persons").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestPostgresRepo_PersonYearsBeyondSmallint(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPostgresRepo(db, 5*time.Second)
	ctx := context.Background()

	rec := Record{
		GutenbergID: 7,
		Title:       strPtr("Epic of Gilgamesh"),
		MediaType:   "Text",
		Authors:     []Person{{Name: "Unknown", BirthYear: intPtr(-40000), DeathYear: intPtr(40000)}},
	}
	require.NoError(t, repo.UpsertRecord(ctx, rec))

	var birth, death int
	err := db.QueryRow(ctx, "SELECT birth_year, death_year FROM persons WHERE name = 'Unknown'").Scan(&birth, &death)
	require.NoError(t, err)
	assert.Equal(t, -40000, birth)
	assert.Equal(t, 40000, death)
}
