package book

import (
	"net/http"
	"strconv"
)

// pageLinks returns absolute next/previous URLs for the listing. All other
// query parameters are carried over unchanged.
func pageLinks(r *http.Request, p Page, count int) (next, previous *string) {
	if p.Offset < count-p.Limit {
		link := pageURL(r, p.Limit, p.Offset+p.Limit)
		next = &link
	}
	if p.Offset >= p.Limit {
		link := pageURL(r, p.Limit, p.Offset-p.Limit)
		previous = &link
	}
	return next, previous
}

func pageURL(r *http.Request, limit, offset int) string {
	u := *r.URL
	u.Scheme = "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	u.Host = r.Host

	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String()
}
