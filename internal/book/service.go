package book

import (
	"context"
)

// Service provides catalog browsing.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the page of eligible books matching f and the total match count.
func (s *Service) List(ctx context.Context, f Filter, p Page) (Result, error) {
	if p.Limit < 1 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return s.repo.List(ctx, f, p)
}

// Get returns a book by its external id.
func (s *Service) Get(ctx context.Context, id int) (Book, error) {
	return s.repo.GetByGutenbergID(ctx, id)
}
