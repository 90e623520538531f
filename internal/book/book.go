package book

import (
	"errors"
)

// ErrNotFound is returned when no book has the requested external id.
var ErrNotFound = errors.New("book not found")

const (
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxSearchTerms = 32
)

// Person is an author or translator as shown in the catalog projection.
type Person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// Book is the flattened catalog projection returned by both endpoints.
// ID is the external (Gutenberg) identifier.
type Book struct {
	ID            int               `json:"id"`
	Title         *string           `json:"title"`
	Authors       []Person          `json:"authors"`
	Summaries     []string          `json:"summaries"`
	Translators   []Person          `json:"translators"`
	Subjects      []string          `json:"subjects"`
	Bookshelves   []string          `json:"bookshelves"`
	Languages     []string          `json:"languages"`
	Copyright     *bool             `json:"copyright"`
	MediaType     string            `json:"media_type"`
	Formats       map[string]string `json:"formats"`
	DownloadCount *int              `json:"download_count"`

	rowID int64
}

func newBook(rowID int64) Book {
	return Book{
		rowID:       rowID,
		Authors:     []Person{},
		Summaries:   []string{},
		Translators: []Person{},
		Subjects:    []string{},
		Bookshelves: []string{},
		Languages:   []string{},
		Formats:     map[string]string{},
	}
}

// Sort selects the listing order.
type Sort int

const (
	SortPopular Sort = iota
	SortAscending
	SortDescending
)

// ParseSort maps the sort parameter; anything unrecognised is the default.
func ParseSort(s string) Sort {
	switch s {
	case "ascending":
		return SortAscending
	case "descending":
		return SortDescending
	default:
		return SortPopular
	}
}

// CopyrightSet lists the copyright values to keep.
type CopyrightSet struct {
	True  bool
	False bool
	Null  bool
}

// Filter holds one optional criterion per filter category. A nil pointer or
// nil slice means the category is not applied.
type Filter struct {
	Sort            Sort
	AuthorYearEnd   *int
	AuthorYearStart *int
	Copyright       *CopyrightSet
	IDs             []int
	Languages       []string
	MimeType        *string
	SearchTerms     []string
	Topic           *string
}

// Page is an offset window over the filtered result.
type Page struct {
	Limit  int
	Offset int
}

// Result is one page plus the total number of matching books.
type Result struct {
	Count int
	Books []Book
}
