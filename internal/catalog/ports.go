package catalog

import (
	"context"
)

// Repository is the write side of the catalog store.
type Repository interface {
	// UpsertRecord writes one book and replaces all of its relations in a
	// single transaction.
	UpsertRecord(ctx context.Context, rec Record) error
	ListGutenbergIDs(ctx context.Context) ([]int, error)
	// DeleteByGutenbergIDs removes books and their dependent rows.
	DeleteByGutenbergIDs(ctx context.Context, ids []int) (int, error)
}
