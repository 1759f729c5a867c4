package models

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortFields maps accepted sortBy names to ledger columns.
var sortFields = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"expiresAt":  "expires_at",
	"expires_at": "expires_at",
	"points":     "points",
	"amount":     "points",
	"status":     "status",
	"id":         "id",
}

type ListQuery struct {
	Page   int
	Limit  int
	SortBy string // column name, one of the sortFields values
	Desc   bool
}

func DefaultListQuery() ListQuery {
	return ListQuery{Page: DefaultPage, Limit: DefaultLimit, SortBy: "created_at"}
}

// Offset saturates at math.MaxInt instead of overflowing.
func (q ListQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.PageOutOfRange() {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// PageOutOfRange reports whether the page's offset does not fit in an int.
func (q ListQuery) PageOutOfRange() bool {
	return q.Limit > 0 && q.Page > 1 && q.Page-1 > math.MaxInt/q.Limit
}

// ParseSort parses "field:asc" or "field:desc"; direction defaults to asc.
func ParseSort(s string) (column string, desc bool, err error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(s), ":")
	column, ok := sortFields[field]
	if !ok {
		return "", false, fmt.Errorf("unsupported sort field %q", field)
	}
	switch strings.ToLower(dir) {
	case "", "asc":
		return column, false, nil
	case "desc":
		return column, true, nil
	}
	return "", false, fmt.Errorf("unsupported sort direction %q", dir)
}

type Page[T any] struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	Data        []T `json:"data"`
}

func NewPage[T any](items []T, total int, q ListQuery) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return Page[T]{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: q.Page,
		PageSize:    q.Limit,
		Data:        items,
	}
}
