package catalog

import (
	"errors"
)

var ErrInvalidRecord = errors.New("invalid catalog record")

// Person is an author or translator. Two persons are the same entity only
// when name, birth year and death year all match.
type Person struct {
	Name      string
	BirthYear *int
	DeathYear *int
}

// Record is the normalized shape the importer produces for one external id.
type Record struct {
	GutenbergID   int
	Title         *string
	Copyright     *bool
	DownloadCount *int
	MediaType     string
	Authors       []Person
	Translators   []Person
	Bookshelves   []string
	Formats       map[string]string
	Languages     []string
	Subjects      []string
	Summaries     []string
}

const DefaultMediaType = "Text"
