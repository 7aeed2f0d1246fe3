// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultPage is used when page is absent, non-numeric or below 1.
	DefaultPage = 1
	// DefaultLimit is used when limit is absent, non-numeric or below 1.
	DefaultLimit = 10
	// MaxLimit caps the page size a client can request.
	MaxLimit = 100
)

// Params is a validated page/limit pair. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Parse reads the "page" and "limit" query parameters.
func Parse(r *http.Request) Params {
	return ParseValues(query.Get(r, "page"), query.Get(r, "limit"))
}

// ParseValues applies the defaulting rules to raw strings. Bad input never
// errors; it falls back to the defaults.
func ParseValues(page, limit string) Params {
	p := Params{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n >= 1 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

// Skip is the number of documents before this page.
func (p Params) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// ApplyToFind sets skip and limit on a Find.
func (p Params) ApplyToFind(find *options.FindOptions) {
	find.SetSkip(p.Skip()).SetLimit(int64(p.Limit))
}

// Pages returns ceil(total/limit), 0 when there is nothing to show.
func Pages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Summary is the pagination block of a list envelope.
type Summary struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Summary builds the pagination block for a result of total documents.
func (p Params) Summary(total int64) Summary {
	return Summary{Page: p.Page, Limit: p.Limit, Pages: Pages(total, p.Limit)}
}
