package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gutendex/internal/auth"
	"gutendex/internal/book"
	"gutendex/internal/catalog"
	"gutendex/internal/config"
	"gutendex/internal/httpx"
	"gutendex/internal/ingest"
	"gutendex/internal/platform/gutenberg"
	"gutendex/internal/platform/logging"
	"gutendex/internal/platform/mailer"
	"gutendex/internal/profile"
	"gutendex/internal/recovery"
	"gutendex/internal/user"
)

const userAgent = "gutendex/1.0 (+https://github.com/gutendex)"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := openDB(ctx, cfg.DSN, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	binder := httpx.NewBinder()

	bookRepository := book.NewPostgresRepo(dbPool, cfg.DBTimeout)
	catalogRepository := catalog.NewPostgresRepo(dbPool, cfg.DBTimeout)
	ingestRepository := ingest.NewPostgresRepo(dbPool, cfg.DBTimeout)
	userRepository := user.NewPostgresRepo(dbPool, cfg.DBTimeout)
	recoveryRepository := recovery.NewPostgresRepo(dbPool, cfg.DBTimeout)

	userService := user.NewService(userRepository)
	authService := auth.NewService(
		cfg.JWTSecret,
		cfg.JWTTTL,
		userService,
		recovery.NewService(recoveryRepository, cfg.OTPTTL),
		mailer.New(mailer.Config(cfg.SMTP), log),
		log,
	)
	feed := gutenberg.NewClient(cfg.FeedURL, userAgent, log)
	ingestService := ingest.NewService(feed, catalog.NewService(catalogRepository), ingestRepository, log)

	router := newRouter(routes{
		books:   book.NewHTTPHandler(book.NewService(bookRepository), binder, log),
		auth:    auth.NewHTTPHandler(authService, binder, log),
		profile: profile.NewHTTPHandler(profile.NewService(userService), binder, log),
		ingest:  ingest.NewHTTPHandler(ingestService, ingestRepository, cfg.InternalSecret, log),
		ready:   dbPool.Ping,
	}, cfg, log)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, dsn string, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Error("cannot ping database", "dsn", config.RedactDSN(dsn), "error", err)
		return nil, err
	}
	log.Info("database connection OK")
	return pool, nil
}
