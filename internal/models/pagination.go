package models

import "math"

type PaginationParams struct {
	Page  int
	Limit int
}

// ClampPage returns page unless it is below 1 or so large that page*limit
// overflows an int, in which case it returns 1.
func ClampPage(page, limit int) int {
	if page < 1 {
		return 1
	}
	if limit > 0 && page > math.MaxInt/limit {
		return 1
	}
	return page
}

// Offset returns the zero-based index of the first row of the page.
func (p PaginationParams) Offset() int {
	return (ClampPage(p.Page, p.Limit) - 1) * p.Limit
}

type PaginatedList[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPaginatedList builds the page envelope, computing TotalPages from the count.
func NewPaginatedList[T any](items []T, total int, p PaginationParams) PaginatedList[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return PaginatedList[T]{
		Items:      items,
		TotalCount: total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}
