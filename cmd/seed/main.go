package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v5/pgxpool"

	"gutendex/internal/catalog"
	"gutendex/internal/config"
	"gutendex/internal/platform/logging"
)

type CLI struct {
	Count int   `help:"Number of generated books on top of the classics." default:"0"`
	Seed  int64 `help:"Random seed for generated books." default:"1"`
}

func (c *CLI) Run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database %s: %w", config.RedactDSN(cfg.DSN), err)
	}
	defer pool.Close()

	svc := catalog.NewService(catalog.NewPostgresRepo(pool, cfg.DBTimeout))
	records := append(classics(), generate(c.Count, c.Seed)...)

	start := time.Now()
	for i, rec := range records {
		if err := svc.Import(ctx, rec); err != nil {
			return fmt.Errorf("import book %d: %w", rec.GutenbergID, err)
		}
		if (i+1)%1000 == 0 {
			log.Info("seeding", "done", i+1, "total", len(records))
		}
	}
	log.Info("seed complete", "books", len(records), "took", time.Since(start).Round(time.Millisecond))
	return nil
}

func classics() []catalog.Record {
	return []catalog.Record{
		{
			GutenbergID:   84,
			Title:         ptr("Frankenstein; Or, The Modern Prometheus"),
			Authors:       []catalog.Person{{Name: "Shelley, Mary Wollstonecraft", BirthYear: ptr(1797), DeathYear: ptr(1851)}},
			Subjects:      []string{"Frankenstein's monster (Fictitious character) -- Fiction", "Science fiction", "Horror tales"},
			Bookshelves:   []string{"Gothic Fiction", "Movie Books", "Science Fiction by Women"},
			Languages:     []string{"en"},
			Copyright:     ptr(false),
			MediaType:     catalog.DefaultMediaType,
			DownloadCount: ptr(75412),
			Formats:       formats(84),
		},
		{
			GutenbergID:   1342,
			Title:         ptr("Pride and Prejudice"),
			Authors:       []catalog.Person{{Name: "Austen, Jane", BirthYear: ptr(1775), DeathYear: ptr(1817)}},
			Subjects:      []string{"Courtship -- Fiction", "England -- Fiction", "Love stories", "Sisters -- Fiction"},
			Bookshelves:   []string{"Best Books Ever Listings", "Harvard Classics"},
			Languages:     []string{"en"},
			Copyright:     ptr(false),
			MediaType:     catalog.DefaultMediaType,
			DownloadCount: ptr(61236),
			Formats:       formats(1342),
		},
		{
			GutenbergID:   11,
			Title:         ptr("Alice's Adventures in Wonderland"),
			Authors:       []catalog.Person{{Name: "Carroll, Lewis", BirthYear: ptr(1832), DeathYear: ptr(1898)}},
			Subjects:      []string{"Fantasy fiction", "Wonderland (Imaginary place) -- Juvenile fiction"},
			Bookshelves:   []string{"Children's Literature"},
			Languages:     []string{"en"},
			Copyright:     ptr(false),
			MediaType:     catalog.DefaultMediaType,
			DownloadCount: ptr(35781),
			Formats:       formats(11),
		},
		{
			GutenbergID:   2701,
			Title:         ptr("Moby Dick; Or, The Whale"),
			Authors:       []catalog.Person{{Name: "Melville, Herman", BirthYear: ptr(1819), DeathYear: ptr(1891)}},
			Subjects:      []string{"Whaling -- Fiction", "Sea stories", "Ship captains -- Fiction"},
			Bookshelves:   []string{"Adventure", "Best Books Ever Listings"},
			Languages:     []string{"en"},
			Copyright:     ptr(false),
			MediaType:     catalog.DefaultMediaType,
			DownloadCount: ptr(28093),
			Formats:       formats(2701),
		},
	}
}

var (
	words     = []string{"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope", "Voyage", "Letters", "Memoirs", "Sketches", "Tales"}
	surnames  = []string{"Smith", "Brown", "Dupont", "Müller", "Rossi", "García", "Silva", "Ivanov"}
	forenames = []string{"Anne", "John", "Marie", "Hans", "Giulia", "Pedro", "Ana", "Nikolai"}
	shelves   = []string{"Adventure", "Poetry", "Philosophy", "History", "Science Fiction", "Children's Literature"}
	langs     = []string{"en", "fr", "de", "it", "es", "pt", "ru"}
)

// generate returns n synthetic records with ids above the classics so that
// reseeding with the same seed is idempotent.
func generate(n int, seed int64) []catalog.Record {
	rng := rand.New(rand.NewSource(seed))
	out := make([]catalog.Record, 0, n)
	for i := 0; i < n; i++ {
		id := 100000 + i
		birth := 1700 + rng.Intn(250)
		author := catalog.Person{
			Name:      fmt.Sprintf("%s, %s", surnames[rng.Intn(len(surnames))], forenames[rng.Intn(len(forenames))]),
			BirthYear: ptr(birth),
			DeathYear: ptr(birth + 30 + rng.Intn(60)),
		}
		word := words[rng.Intn(len(words))]
		out = append(out, catalog.Record{
			GutenbergID:   id,
			Title:         ptr(fmt.Sprintf("%s %d", word, i+1)),
			Authors:       []catalog.Person{author},
			Subjects:      []string{word + " -- Fiction"},
			Bookshelves:   []string{shelves[rng.Intn(len(shelves))]},
			Languages:     []string{langs[rng.Intn(len(langs))]},
			Copyright:     ptr(rng.Intn(10) == 0),
			MediaType:     catalog.DefaultMediaType,
			DownloadCount: ptr(rng.Intn(50000)),
			Formats:       formats(id),
		})
	}
	return out
}

func formats(id int) map[string]string {
	base := fmt.Sprintf("https://www.gutenberg.org/ebooks/%d", id)
	return map[string]string{
		"text/html":                    base + ".html.images",
		"application/epub+zip":         base + ".epub3.images",
		"text/plain; charset=us-ascii": base + ".txt.utf-8",
		"application/rdf+xml":          base + ".rdf",
		"image/jpeg":                   fmt.Sprintf("https://www.gutenberg.org/cache/epub/%d/pg%d.cover.medium.jpg", id, id),
	}
}

func ptr[T any](v T) *T { return &v }

func main() {
	cfg := config.LoadWithoutAuth()
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Load a small deterministic catalog for local development."),
		kong.Bind(cfg, log),
	)
	if err := ctx.Run(); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
