package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v5/pgxpool"

	"gutendex/internal/catalog"
	"gutendex/internal/config"
	"gutendex/internal/ingest"
	"gutendex/internal/platform/gutenberg"
	"gutendex/internal/platform/logging"
)

const userAgent = "gutendex-sync/1.0 (+https://github.com/gutendex)"

type CLI struct {
	FeedURL string        `help:"URL of the rdf-files.tar.bz2 feed." env:"CATALOG_FEED_URL"`
	Archive string        `help:"Read a local feed archive instead of downloading." type:"existingfile"`
	Retries int           `help:"Download retries." default:"4"`
	TempDir string        `help:"Where the downloaded archive is spooled." type:"path"`
	Timeout time.Duration `help:"Abort the run after this long. Zero means no limit." default:"0"`
}

func (c *CLI) feed(log *slog.Logger) ingest.Feed {
	if c.Archive != "" {
		return gutenberg.ArchiveFile{Path: c.Archive}
	}
	opts := []gutenberg.ClientOption{gutenberg.WithRetries(c.Retries, time.Second, 30*time.Second)}
	if c.TempDir != "" {
		opts = append(opts, gutenberg.WithTempDir(c.TempDir))
	}
	return gutenberg.NewClient(c.FeedURL, userAgent, log, opts...)
}

func (c *CLI) Run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database %s: %w", config.RedactDSN(cfg.DSN), err)
	}
	defer pool.Close()

	svc := ingest.NewService(
		c.feed(log),
		catalog.NewService(catalog.NewPostgresRepo(pool, cfg.DBTimeout)),
		ingest.NewPostgresRepo(pool, cfg.DBTimeout),
		log,
	)
	run, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("catalog synced",
		"run_id", run.ID,
		"seen", run.BooksSeen,
		"upserted", run.BooksUpserted,
		"failed", run.BooksFailed,
		"deleted", run.BooksDeleted,
	)
	return nil
}

func main() {
	cfg := config.LoadWithoutAuth()
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	cli := CLI{FeedURL: cfg.FeedURL}
	ctx := kong.Parse(&cli,
		kong.Name("catalog-sync"),
		kong.Description("Download the catalog feed and reconcile the store with it."),
		kong.UsageOnError(),
		kong.Bind(cfg, log),
	)
	if err := ctx.Run(); err != nil {
		log.Error("catalog sync failed", "error", err)
		os.Exit(1)
	}
}
