package ingest

import (
	"time"
)

type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Run is one import of the catalog feed, as recorded in ingest_runs.
type Run struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Status        Status     `json:"status"`
	FeedURL       string     `json:"feed_url"`
	BooksSeen     int        `json:"books_seen"`
	BooksUpserted int        `json:"books_upserted"`
	BooksFailed   int        `json:"books_failed"`
	BooksDeleted  int        `json:"books_deleted"`
	Error         string     `json:"error,omitempty"`
}
