// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged tables.
const PageSize = 10

// window is how many page-number buttons are shown at most.
const window = 7

// Gap marks an elided run of page numbers in Numbers.
const Gap = 0

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	return atLeastOne(query.Get(r, "page"))
}

func atLeastOne(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Clamp keeps page within [1, totalPages]. totalPages < 1 counts as one.
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// AfterDelete returns the page to show once a row has been deleted from
// page. When the row was the only one on a page past the first, the view
// steps back one page; otherwise it stays put.
func AfterDelete(page, rowsOnPage int) int {
	if page > 1 && rowsOnPage == 1 {
		return page - 1
	}
	return max(page, 1)
}

// Numbers returns the page-number buttons to draw for current out of
// total pages. Long runs are elided with Gap so at most seven entries
// are returned, always including the first and last page.
func Numbers(current, total int) []int {
	if total < 1 {
		return nil
	}
	current = Clamp(current, total)
	if total <= window {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	// Keep first, last, current and its neighbours.
	lo, hi := current-1, current+1
	if lo <= 2 {
		lo, hi = 2, 5
	}
	if hi >= total-1 {
		lo, hi = total-4, total-1
	}

	out := []int{1}
	if lo > 2 {
		out = append(out, Gap)
	}
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	if hi < total-1 {
		out = append(out, Gap)
	}
	return append(out, total)
}

// Range holds computed display range values for a paged table.
type Range struct {
	Start int // 1-based index of the first row (0 if no results)
	End   int // 1-based index of the last row (0 if no results)
	Total int
}

// ComputeRange calculates "showing Start–End of Total" for page.
func ComputeRange(page, limit, shown, total int) Range {
	if shown == 0 {
		return Range{Total: total}
	}
	if limit < 1 {
		limit = PageSize
	}
	start := (max(page, 1)-1)*limit + 1
	return Range{Start: start, End: start + shown - 1, Total: total}
}
