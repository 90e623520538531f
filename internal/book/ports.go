package book

import (
	"context"
)

// Repository is the read side of the catalog store. Implementations never
// mutate the store.
type Repository interface {
	List(ctx context.Context, f Filter, p Page) (Result, error)
	GetByGutenbergID(ctx context.Context, id int) (Book, error)
}
