// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
const PageSize = 20

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 100

// ParseStart extracts the human-friendly "start" query parameter (1-based index).
// Returns 1 if not present or invalid.
func ParseStart(r *http.Request) int {
	return parsePositive(query.Get(r, "start"), 1)
}

// ParseLimit extracts the "limit" query parameter, defaulting to
// PageSize and clamped to MaxPageSize.
func ParseLimit(r *http.Request) int {
	return min(parsePositive(query.Get(r, "limit"), PageSize), MaxPageSize)
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int  `json:"start"` // 1-based start index (0 if no results)
	End       int  `json:"end"`   // 1-based end index (0 if no results)
	Total     int  `json:"total"`
	PrevStart int  `json:"prev_start"` // start value for previous page link
	NextStart int  `json:"next_start"` // start value for next page link
	HasPrev   bool `json:"has_prev"`
	HasNext   bool `json:"has_next"`
}

// Page returns the window of rows beginning at the 1-based start, at
// most size long, and the range describing it. A start past the end
// yields an empty page.
func Page[T any](rows []T, start, size int) ([]T, Range) {
	if start < 1 {
		start = 1
	}
	if size < 1 {
		size = PageSize
	}
	total := len(rows)
	if start > total {
		r := ComputeRange(start, 0, size)
		r.Total = total
		r.HasPrev = total > 0
		return rows[:0], r
	}
	end := min(start-1+size, total)
	page := rows[start-1 : end]

	r := ComputeRange(start, len(page), size)
	r.Total = total
	r.HasPrev = start > 1
	r.HasNext = end < total
	return page, r
}

// ComputeRange calculates display range values given the current start
// index, the number of items shown and the page size.
func ComputeRange(start, shown, pageSize int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}
	}

	prevStart := start - pageSize
	if prevStart < 1 {
		prevStart = 1
	}

	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prevStart,
		NextStart: start + shown,
	}
}
