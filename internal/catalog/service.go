package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Import normalizes rec and writes it to the store.
func (s *Service) Import(ctx context.Context, rec Record) error {
	rec, err := Normalize(rec)
	if err != nil {
		return err
	}
	return s.repo.UpsertRecord(ctx, rec)
}

// Prune deletes every stored book whose id is not in seen and returns how
// many were removed.
func (s *Service) Prune(ctx context.Context, seen map[int]struct{}) (int, error) {
	stored, err := s.repo.ListGutenbergIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored ids: %w", err)
	}

	var stale []int
	for _, id := range stored {
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	sort.Ints(stale)

	n, err := s.repo.DeleteByGutenbergIDs(ctx, stale)
	if err != nil {
		return 0, fmt.Errorf("delete stale books: %w", err)
	}
	return n, nil
}

// Normalize trims and deduplicates the collections of rec so that re-imports
// never produce duplicate relation rows.
func Normalize(rec Record) (Record, error) {
	if rec.GutenbergID <= 0 {
		return Record{}, fmt.Errorf("%w: gutenberg id %d", ErrInvalidRecord, rec.GutenbergID)
	}
	if rec.Title != nil {
		title := strings.TrimSpace(*rec.Title)
		rec.Title = &title
	}
	rec.MediaType = strings.TrimSpace(rec.MediaType)
	if rec.MediaType == "" {
		rec.MediaType = DefaultMediaType
	}

	rec.Authors = uniquePersons(rec.Authors)
	rec.Translators = uniquePersons(rec.Translators)
	rec.Bookshelves = uniqueStrings(rec.Bookshelves, strings.TrimSpace)
	rec.Subjects = uniqueStrings(rec.Subjects, strings.TrimSpace)
	rec.Languages = uniqueStrings(rec.Languages, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})

	summaries := rec.Summaries[:0:0]
	for _, text := range rec.Summaries {
		if text = strings.TrimSpace(text); text != "" {
			summaries = append(summaries, text)
		}
	}
	rec.Summaries = summaries

	formats := make(map[string]string, len(rec.Formats))
	for mimeType, url := range rec.Formats {
		if mimeType != "" && url != "" {
			formats[mimeType] = url
		}
	}
	rec.Formats = formats
	return rec, nil
}

func uniqueStrings(in []string, clean func(string) string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = clean(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func uniquePersons(in []Person) []Person {
	seen := make(map[string]struct{}, len(in))
	out := make([]Person, 0, len(in))
	for _, p := range in {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		key := personKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func personKey(p Person) string {
	year := func(y *int) string {
		if y == nil {
			return "-"
		}
		return fmt.Sprint(*y)
	}
	return p.Name + "\x00" + year(p.BirthYear) + "\x00" + year(p.DeathYear)
}
