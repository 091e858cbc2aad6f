package resource

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is the page size when the caller does not ask for one.
	DefaultPageSize = 25
	// MaxPageSize caps requested page sizes to keep result sets bounded.
	MaxPageSize = 100
)

// ListQuery is the recognized subset of list query parameters, parsed and
// clamped. Unknown parameters are silently ignored so the endpoint stays
// forward-compatible with UI changes.
type ListQuery struct {
	Page  int
	Limit int
	// Search is the free-text term matched case-insensitively against the
	// schema's search columns.
	Search string
	// Equals holds exact-match filters keyed by field name, in schema
	// declaration order when iterated via the schema.
	Equals map[string]string
}

// Offset returns the row offset for the query's page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParseListQuery extracts page, limit, search, and the schema's declared
// equals-filters from raw query parameters. Page is clamped to >= 1 and limit
// to [1, MaxPageSize]; non-numeric values fall back to the defaults.
func ParseListQuery(s *Schema, params url.Values) ListQuery {
	q := ListQuery{
		Page:   clampPage(params.Get("page")),
		Limit:  clampLimit(params.Get("limit")),
		Search: strings.TrimSpace(params.Get("search")),
		Equals: map[string]string{},
	}

	for _, name := range s.EqualsFilters {
		if v := strings.TrimSpace(params.Get(name)); v != "" {
			q.Equals[name] = v
		}
	}
	return q
}

func clampPage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func clampLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPageSize
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// Pagination is the page metadata reported alongside list data, computed from
// the count query's total.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination derives total_pages from the total row count.
func NewPagination(q ListQuery, total int) Pagination {
	pages := total / q.Limit
	if total%q.Limit != 0 {
		pages++
	}
	return Pagination{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: pages}
}

// ParsePageQuery parses page, limit, and search without schema filters, for
// endpoints outside the schema registry such as the user and activity admin
// APIs.
func ParsePageQuery(params url.Values) ListQuery {
	return ListQuery{
		Page:   clampPage(params.Get("page")),
		Limit:  clampLimit(params.Get("limit")),
		Search: strings.TrimSpace(params.Get("search")),
	}
}
