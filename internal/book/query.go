package book

import (
	"fmt"
	"strings"
)

// listQuery is the SQL for one listing request. Count and page share the
// same WHERE clause and arguments so they always agree on eligibility.
type listQuery struct {
	where   string
	orderBy string
	args    []any
}

// eligible is applied to every listing regardless of filters.
const eligible = "b.title IS NOT NULL AND b.download_count IS NOT NULL"

const pageColumns = "b.id, b.gutenberg_id, b.title, b.copyright, b.download_count, b.media_type"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type queryBuilder struct {
	clauses []string
	args    []any
	argn    int
}

func (qb *queryBuilder) bind(v any) string {
	qb.args = append(qb.args, v)
	qb.argn++
	return fmt.Sprintf("$%d", qb.argn)
}

func (qb *queryBuilder) where(clause string) {
	qb.clauses = append(qb.clauses, clause)
}

// buildListQuery maps a Filter onto SQL. Every many-valued criterion is its
// own correlated EXISTS, so each author-year bound and each search term is
// matched against a fresh join of its relation.
func buildListQuery(f Filter) listQuery {
	qb := &queryBuilder{clauses: []string{eligible}}

	if f.AuthorYearEnd != nil {
		p := qb.bind(*f.AuthorYearEnd) + "::bigint"
		qb.where(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM book_authors ba JOIN persons p ON p.id = ba.person_id
			WHERE ba.book_id = b.id AND (p.birth_year <= %s OR p.death_year <= %s))`, p, p))
	}

	if f.AuthorYearStart != nil {
		p := qb.bind(*f.AuthorYearStart) + "::bigint"
		qb.where(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM book_authors ba JOIN persons p ON p.id = ba.person_id
			WHERE ba.book_id = b.id AND (p.birth_year >= %s OR p.death_year >= %s))`, p, p))
	}

	if f.Copyright != nil {
		qb.where(copyrightClause(*f.Copyright))
	}

	if f.IDs != nil {
		qb.where(fmt.Sprintf("b.gutenberg_id = ANY(%s::bigint[])", qb.bind(f.IDs)))
	}

	if f.Languages != nil {
		qb.where(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM book_languages bl JOIN languages l ON l.id = bl.language_id
			WHERE bl.book_id = b.id AND lower(l.code) = ANY(%s))`, qb.bind(f.Languages)))
	}

	if f.MimeType != nil {
		qb.where(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM formats f
			WHERE f.book_id = b.id AND starts_with(f.mime_type, %s))`, qb.bind(*f.MimeType)))
	}

	for _, term := range f.SearchTerms {
		p := qb.bind(containsPattern(term))
		qb.where(fmt.Sprintf(`(b.title ILIKE %s OR EXISTS (
			SELECT 1 FROM book_authors ba JOIN persons p ON p.id = ba.person_id
			WHERE ba.book_id = b.id AND p.name ILIKE %s))`, p, p))
	}

	if f.Topic != nil {
		p := qb.bind(containsPattern(*f.Topic))
		qb.where(fmt.Sprintf(`(EXISTS (
			SELECT 1 FROM book_bookshelves bb JOIN bookshelves s ON s.id = bb.bookshelf_id
			WHERE bb.book_id = b.id AND s.name ILIKE %s) OR EXISTS (
			SELECT 1 FROM book_subjects bs JOIN subjects s ON s.id = bs.subject_id
			WHERE bs.book_id = b.id AND s.name ILIKE %s))`, p, p))
	}

	return listQuery{
		where:   "WHERE " + strings.Join(qb.clauses, " AND "),
		orderBy: orderBy(f.Sort),
		args:    qb.args,
	}
}

func copyrightClause(c CopyrightSet) string {
	var keep []string
	if c.True {
		keep = append(keep, "b.copyright = TRUE")
	}
	if c.False {
		keep = append(keep, "b.copyright = FALSE")
	}
	if c.Null {
		keep = append(keep, "b.copyright IS NULL")
	}
	if len(keep) == 0 {
		return "FALSE"
	}
	return "(" + strings.Join(keep, " OR ") + ")"
}

func orderBy(s Sort) string {
	switch s {
	case SortAscending:
		return "b.gutenberg_id ASC"
	case SortDescending:
		return "b.gutenberg_id DESC"
	default:
		return "b.download_count DESC"
	}
}

func (q listQuery) countSQL() string {
	return "SELECT COUNT(DISTINCT b.id) FROM books b " + q.where
}

// pageSQL returns the page statement and its arguments.
func (q listQuery) pageSQL(p Page) (string, []any) {
	n := len(q.args)
	sql := fmt.Sprintf("SELECT DISTINCT %s FROM books b %s ORDER BY %s LIMIT $%d OFFSET $%d",
		pageColumns, q.where, q.orderBy, n+1, n+2)
	args := append(append([]any{}, q.args...), p.Limit, p.Offset)
	return sql, args
}
