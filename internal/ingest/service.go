package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gutendex/internal/catalog"
	"gutendex/internal/platform/gutenberg"
)

// ErrAlreadyRunning is returned by Run while another run holds the guard.
var ErrAlreadyRunning = errors.New("ingest run already in progress")

// ErrEmptyFeed fails a run whose feed listed no books, so that an empty
// archive never prunes the whole catalog.
var ErrEmptyFeed = errors.New("feed contained no books")

type Feed interface {
	FeedURL() string
	Fetch(ctx context.Context, visit func(gutenberg.Entry) error) error
}

type Importer interface {
	Import(ctx context.Context, rec catalog.Record) error
	Prune(ctx context.Context, seen map[int]struct{}) (int, error)
}

type Service struct {
	feed     Feed
	importer Importer
	repo     Repository
	log      *slog.Logger

	running sync.Mutex
}

func NewService(feed Feed, importer Importer, repo Repository, log *slog.Logger) *Service {
	return &Service{
		feed:     feed,
		importer: importer,
		repo:     repo,
		log:      log,
	}
}

// Run imports every book in the feed, one transaction per book, and then
// removes books the feed no longer lists. A book that fails to parse or to
// store is logged and skipped. Stale books are only removed after the feed
// was read to the end.
func (s *Service) Run(ctx context.Context) (*Run, error) {
	if !s.running.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Unlock()
	return s.run(ctx)
}

// Start is Run in the background. It fails fast with ErrAlreadyRunning and
// otherwise returns once the run holds the guard.
func (s *Service) Start(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrAlreadyRunning
	}
	go func() {
		defer s.running.Unlock()
		if _, err := s.run(ctx); err != nil {
			s.log.Error("background ingest run failed", "error", err)
		}
	}()
	return nil
}

func (s *Service) run(ctx context.Context) (run *Run, err error) {
	run = &Run{
		Status:    StatusRunning,
		FeedURL:   s.feed.FeedURL(),
		StartedAt: time.Now().UTC(),
	}
	runID, err := s.repo.CreateRun(ctx, run)
	if err != nil {
		return nil, err
	}
	run.ID = runID
	log := s.log.With("run_id", run.ID)
	log.Info("ingest run started", "feed_url", run.FeedURL)

	defer func() {
		now := time.Now().UTC()
		run.FinishedAt = &now
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = StatusCompleted
			GaugeLastSuccess.SetToCurrentTime()
		}
		CounterRuns.WithLabelValues(string(run.Status)).Inc()

		if updateErr := s.repo.UpdateRun(context.WithoutCancel(ctx), run); updateErr != nil {
			log.Error("failed to update ingest run", "error", updateErr)
		}
		log.Info("ingest run finished",
			"status", run.Status,
			"books_seen", run.BooksSeen,
			"books_upserted", run.BooksUpserted,
			"books_failed", run.BooksFailed,
			"books_deleted", run.BooksDeleted,
			"duration_ms", now.Sub(run.StartedAt).Milliseconds(),
		)
	}()

	seen := make(map[int]struct{})
	err = s.feed.Fetch(ctx, func(e gutenberg.Entry) error {
		run.BooksSeen++
		seen[e.ID] = struct{}{}

		importErr := e.Err
		if importErr == nil {
			importErr = s.importer.Import(ctx, e.Record)
		}
		if importErr != nil {
			run.BooksFailed++
			CounterBooks.WithLabelValues("failed").Inc()
			log.Warn("failed to import book", "book_id", e.ID, "error", importErr)
			return nil
		}
		run.BooksUpserted++
		CounterBooks.WithLabelValues("upserted").Inc()
		return nil
	})
	if err != nil {
		return run, fmt.Errorf("read feed: %w", err)
	}
	if len(seen) == 0 {
		return run, ErrEmptyFeed
	}

	deleted, err := s.importer.Prune(ctx, seen)
	if err != nil {
		return run, fmt.Errorf("prune stale books: %w", err)
	}
	run.BooksDeleted = deleted
	CounterBooks.WithLabelValues("deleted").Add(float64(deleted))
	return run, nil
}
