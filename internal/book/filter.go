package book

import (
	"strconv"
	"strings"
)

// ListParams is the raw query string of GET /books.
type ListParams struct {
	Sort            string  `query:"sort"`
	AuthorYearEnd   *int    `query:"author_year_end"`
	AuthorYearStart *int    `query:"author_year_start"`
	Copyright       *string `query:"copyright"`
	IDs             *string `query:"ids"`
	Languages       *string `query:"languages"`
	MimeType        *string `query:"mime_type"`
	Search          *string `query:"search"`
	Topic           *string `query:"topic"`
	Limit           *int    `query:"limit" validate:"omitnil,gte=1,lte=100"`
	Offset          *int    `query:"offset" validate:"omitnil,gte=0"`
}

// Filter converts the raw parameters into typed criteria.
func (p ListParams) Filter() Filter {
	f := Filter{
		Sort:            ParseSort(p.Sort),
		AuthorYearEnd:   p.AuthorYearEnd,
		AuthorYearStart: p.AuthorYearStart,
	}
	if p.Copyright != nil {
		set := ParseCopyright(*p.Copyright)
		f.Copyright = &set
	}
	if p.IDs != nil {
		f.IDs = ParseIDs(*p.IDs)
	}
	if p.Languages != nil {
		f.Languages = ParseLanguages(*p.Languages)
	}
	if p.MimeType != nil && *p.MimeType != "" {
		f.MimeType = p.MimeType
	}
	if p.Search != nil {
		f.SearchTerms = ParseSearch(*p.Search)
	}
	if p.Topic != nil && *p.Topic != "" {
		f.Topic = p.Topic
	}
	return f
}

func (p ListParams) Page() Page {
	page := Page{Limit: DefaultLimit}
	if p.Limit != nil {
		page.Limit = *p.Limit
	}
	if p.Offset != nil {
		page.Offset = *p.Offset
	}
	return page
}

// ParseCopyright reads a comma-separated keep-set. Unknown tokens are
// ignored, so a value with no known token keeps nothing.
func ParseCopyright(s string) CopyrightSet {
	var set CopyrightSet
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "true":
			set.True = true
		case "false":
			set.False = true
		case "null":
			set.Null = true
		}
	}
	return set
}

// ParseIDs returns nil when any token is not an integer, which disables the
// filter rather than failing the request.
func ParseIDs(s string) []int {
	if s == "" {
		return nil
	}
	toks := strings.Split(s, ",")
	ids := make([]int, 0, len(toks))
	for _, tok := range toks {
		id, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}

func ParseLanguages(s string) []string {
	if s == "" {
		return nil
	}
	toks := strings.Split(s, ",")
	codes := make([]string, 0, len(toks))
	for _, tok := range toks {
		codes = append(codes, strings.ToLower(strings.TrimSpace(tok)))
	}
	return codes
}

// ParseSearch splits on single spaces and keeps the first MaxSearchTerms
// tokens. Empty tokens count toward that cap and are dropped afterwards.
func ParseSearch(s string) []string {
	toks := strings.Split(s, " ")
	if len(toks) > MaxSearchTerms {
		toks = toks[:MaxSearchTerms]
	}
	var terms []string
	for _, tok := range toks {
		if tok != "" {
			terms = append(terms, tok)
		}
	}
	return terms
}
