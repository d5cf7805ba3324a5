package query

import (
	"net/url"
	"strconv"
	"strings"

	"todo-planner/internal/apperr"
)

// Page selects a window of a sorted result.
type Page struct {
	Limit int
	Page  int
	Sort  string
	Desc  bool
}

// DefaultPage is the first page sorted by id.
func DefaultPage() Page {
	return Page{Limit: DefaultLimit, Page: 1, Sort: "id"}
}

// Offset is the number of records skipped before this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads limit, page and sort. sort names a schema field, prefixed by '-' for descending.
func ParsePage(values url.Values, schema Schema) (Page, error) {
	p := DefaultPage()
	v := &apperr.ValidationError{}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil || n < 0:
			v.Add("limit", "expected a non-negative integer")
		case n == 0:
		case n > MaxLimit:
			p.Limit = MaxLimit
		default:
			p.Limit = n
		}
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			v.Add("page", "expected a positive integer")
		} else {
			p.Page = n
		}
	}
	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		name := strings.TrimPrefix(raw, "-")
		field, ok := schema[name]
		if !ok || field.Type == TypeJSONList {
			v.Add("sort", "unknown field")
		} else {
			p.Sort = name
			p.Desc = strings.HasPrefix(raw, "-")
		}
	}
	if err := v.Err(); err != nil {
		return Page{}, err
	}
	return p, nil
}

// Result is one page of records plus totals computed with the same filter.
type Result[T any] struct {
	Docs       []T   `json:"docs"`
	TotalDocs  int64 `json:"totalDocs"`
	Limit      int   `json:"limit"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// NewResult assembles a Result, never returning nil Docs.
func NewResult[T any](docs []T, total int64, p Page) Result[T] {
	if docs == nil {
		docs = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Result[T]{Docs: docs, TotalDocs: total, Limit: p.Limit, Page: p.Page, TotalPages: pages}
}
