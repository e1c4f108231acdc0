// Package datatable turns a page of typed rows into the view model drawn by
// the shared "data_table" template: search box, optional add button,
// column cells, loading skeleton, empty state and page-number controls.
//
// The table keeps no page state of its own. Page, totals and search term
// all come from the caller, normally a screen.Controller.
package datatable

import (
	"fmt"
	"html/template"

	"github.com/dalemusser/visitdesk/internal/app/system/paging"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// DefaultSkeletonRows is how many placeholder rows show while loading.
const DefaultSkeletonRows = 5

// Column describes one column of a Table.
//
// Value extracts the cell value from a row. Render, when set, draws the
// cell from that value and the whole row; otherwise the value is printed
// and HTML-escaped.
type Column[T any] struct {
	Header string
	Value  func(row T) any
	Render func(value any, row T) template.HTML
	Class  string
}

// Table is the caller-facing description of one table render.
type Table[T any] struct {
	ID       string // DOM id; HTMX swaps target "#<ID>"
	BasePath string // screen path, e.g. "/society"

	Columns []Column[T]
	Rows    []T
	RowID   func(row T) models.ID

	Search     string
	Loading    bool
	Error      string
	EmptyText  string
	Skeleton   int
	Pagination models.Pagination
	Page       int

	CanAdd    bool
	AddLabel  string
	CanEdit   func(row T) bool
	CanDelete func(row T) bool
}

// View is the template-facing render model.
type View struct {
	ID       string
	BasePath string

	Headers    []string
	Classes    []string
	Rows       []RowView
	HasActions bool
	ColSpan    int // every column, the actions column included

	Search    string
	Loading   bool
	Skeleton  []int
	Error     string
	EmptyText string

	CanAdd   bool
	AddLabel string

	Pager Pager
}

// RowView is one drawn row.
type RowView struct {
	ID        string
	Cells     []template.HTML
	CanEdit   bool
	CanDelete bool
}

// Pager drives the previous / numbers / next controls.
type Pager struct {
	Page       int
	TotalPages int
	Numbers    []int
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
	Range      paging.Range
}

// IsGap reports whether n marks an elided run of pages.
func (Pager) IsGap(n int) bool { return n == paging.Gap }

// View builds the render model.
func (t Table[T]) View() View {
	v := View{
		ID:        t.ID,
		BasePath:  t.BasePath,
		Search:    t.Search,
		Loading:   t.Loading,
		Error:     t.Error,
		EmptyText: t.EmptyText,
		CanAdd:    t.CanAdd,
		AddLabel:  t.AddLabel,
	}
	if v.EmptyText == "" {
		v.EmptyText = "No records found."
	}
	if v.AddLabel == "" {
		v.AddLabel = "Add"
	}

	for _, c := range t.Columns {
		v.Headers = append(v.Headers, c.Header)
		v.Classes = append(v.Classes, c.Class)
	}

	if t.Loading {
		n := t.Skeleton
		if n <= 0 {
			n = DefaultSkeletonRows
		}
		v.Skeleton = make([]int, n)
	}

	for _, row := range t.Rows {
		rv := RowView{
			CanEdit:   t.CanEdit != nil && t.CanEdit(row),
			CanDelete: t.CanDelete != nil && t.CanDelete(row),
		}
		if t.RowID != nil {
			rv.ID = t.RowID(row).String()
		}
		for _, c := range t.Columns {
			rv.Cells = append(rv.Cells, cell(c, row))
		}
		if rv.CanEdit || rv.CanDelete {
			v.HasActions = true
		}
		v.Rows = append(v.Rows, rv)
	}

	v.ColSpan = len(v.Headers)
	if v.HasActions {
		v.ColSpan++
	}
	v.Pager = pager(t.Page, t.Pagination, len(t.Rows))
	return v
}

func cell[T any](c Column[T], row T) template.HTML {
	var val any
	if c.Value != nil {
		val = c.Value(row)
	}
	if c.Render != nil {
		return c.Render(val, row)
	}
	if val == nil {
		return ""
	}
	return template.HTML(template.HTMLEscapeString(fmt.Sprint(val)))
}

func pager(page int, p models.Pagination, shown int) Pager {
	total := max(p.TotalPages, 1)
	page = paging.Clamp(page, total)
	return Pager{
		Page:       page,
		TotalPages: total,
		Numbers:    paging.Numbers(page, total),
		HasPrev:    page > 1,
		HasNext:    page < total,
		Prev:       max(page-1, 1),
		Next:       min(page+1, total),
		Range:      paging.ComputeRange(page, p.Limit, shown, p.Total),
	}
}
