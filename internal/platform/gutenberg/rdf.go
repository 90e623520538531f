package gutenberg

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gutendex/internal/catalog"
)

const lcsh = "http://purl.org/dc/terms/LCSH"

type rdfDocument struct {
	XMLName xml.Name  `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# RDF"`
	Ebooks  []rdfBook `xml:"http://www.gutenberg.org/2009/pgterms/ ebook"`
}

type rdfBook struct {
	About       string         `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
	Titles      []string       `xml:"http://purl.org/dc/terms/ title"`
	Creators    []rdfAgentRef  `xml:"http://purl.org/dc/terms/ creator"`
	Translators []rdfAgentRef  `xml:"http://id.loc.gov/vocabulary/relators/ trl"`
	Rights      []string       `xml:"http://purl.org/dc/terms/ rights"`
	Downloads   string         `xml:"http://www.gutenberg.org/2009/pgterms/ downloads"`
	Types       []rdfValueNode `xml:"http://purl.org/dc/terms/ type"`
	Languages   []rdfValueNode `xml:"http://purl.org/dc/terms/ language"`
	Subjects    []rdfValueNode `xml:"http://purl.org/dc/terms/ subject"`
	Bookshelves []rdfValueNode `xml:"http://www.gutenberg.org/2009/pgterms/ bookshelf"`
	Files       []rdfFileRef   `xml:"http://purl.org/dc/terms/ hasFormat"`
	Summaries   []string       `xml:"http://www.gutenberg.org/2009/pgterms/ marc520"`
}

type rdfAgentRef struct {
	Agents []rdfAgent `xml:"http://www.gutenberg.org/2009/pgterms/ agent"`
}

type rdfAgent struct {
	Name      string `xml:"http://www.gutenberg.org/2009/pgterms/ name"`
	BirthDate string `xml:"http://www.gutenberg.org/2009/pgterms/ birthdate"`
	DeathDate string `xml:"http://www.gutenberg.org/2009/pgterms/ deathdate"`
}

type rdfValueNode struct {
	Descriptions []rdfDescription `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

type rdfDescription struct {
	MemberOf rdfResource `xml:"http://purl.org/dc/dcam/ memberOf"`
	Values   []string    `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# value"`
}

type rdfResource struct {
	Resource string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# resource,attr"`
}

type rdfFileRef struct {
	File rdfFile `xml:"http://www.gutenberg.org/2009/pgterms/ file"`
}

type rdfFile struct {
	About   string         `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# about,attr"`
	Formats []rdfValueNode `xml:"http://purl.org/dc/terms/ format"`
}

// ParseRDF reads one pg<id>.rdf document into a catalog record.
func ParseRDF(r io.Reader, id int) (catalog.Record, error) {
	var doc rdfDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return catalog.Record{}, errors.Wrapf(err, "parse rdf for book %d", id)
	}
	if len(doc.Ebooks) == 0 {
		return catalog.Record{}, errors.Errorf("parse rdf for book %d: no ebook element", id)
	}
	b := doc.Ebooks[0]

	rec := catalog.Record{
		GutenbergID: id,
		MediaType:   catalog.DefaultMediaType,
		Formats:     map[string]string{},
	}

	if len(b.Titles) > 0 {
		if title := collapseSpace(b.Titles[0]); title != "" {
			rec.Title = &title
		}
	}
	rec.Copyright = copyright(b.Rights)
	if n, err := strconv.Atoi(strings.TrimSpace(b.Downloads)); err == nil {
		rec.DownloadCount = &n
	}
	for _, v := range values(b.Types, "") {
		rec.MediaType = v
		break
	}

	rec.Authors = people(b.Creators)
	rec.Translators = people(b.Translators)
	rec.Languages = values(b.Languages, "")
	rec.Subjects = values(b.Subjects, lcsh)
	rec.Bookshelves = values(b.Bookshelves, "")

	for _, ref := range b.Files {
		url := strings.TrimSpace(ref.File.About)
		if url == "" {
			continue
		}
		for _, mimeType := range values(ref.File.Formats, "") {
			if _, ok := rec.Formats[mimeType]; !ok {
				rec.Formats[mimeType] = url
			}
		}
	}

	for _, s := range b.Summaries {
		if s = strings.TrimSpace(s); s != "" {
			rec.Summaries = append(rec.Summaries, s)
		}
	}
	return rec, nil
}

func copyright(rights []string) *bool {
	for _, text := range rights {
		switch {
		case strings.Contains(text, "Copyrighted"):
			v := true
			return &v
		case strings.Contains(text, "Public domain"):
			v := false
			return &v
		}
	}
	return nil
}

func people(refs []rdfAgentRef) []catalog.Person {
	var out []catalog.Person
	for _, ref := range refs {
		for _, a := range ref.Agents {
			name := collapseSpace(a.Name)
			if name == "" {
				continue
			}
			out = append(out, catalog.Person{
				Name:      name,
				BirthYear: year(a.BirthDate),
				DeathYear: year(a.DeathDate),
			})
		}
	}
	return out
}

func year(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// values flattens rdf:value texts, optionally keeping only descriptions that
// are a dcam:memberOf the given vocabulary.
func values(nodes []rdfValueNode, memberOf string) []string {
	var out []string
	for _, n := range nodes {
		for _, d := range n.Descriptions {
			if memberOf != "" && d.MemberOf.Resource != memberOf {
				continue
			}
			for _, v := range d.Values {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
		}
	}
	return out
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
