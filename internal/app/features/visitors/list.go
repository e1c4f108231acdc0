package visitors

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/policy/visitorpolicy"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/datatable"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/app/system/viewdata"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type listData struct {
	viewdata.BaseVM
	Table datatable.View
}

const displayLayout = "02 Jan 2006 15:04"

func (h *Handler) columns() []datatable.Column[models.Visitor] {
	when := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(h.Loc).Format(displayLayout)
	}
	return []datatable.Column[models.Visitor]{
		{Header: "Name", Value: func(v models.Visitor) any { return v.Name }},
		{Header: "Phone", Value: func(v models.Visitor) any { return v.Phone }},
		{Header: "Department", Value: func(v models.Visitor) any { return v.ApartmentName() }},
		{Header: "Visitors", Value: func(v models.Visitor) any { return v.Count() }, Class: "num hide-sm"},
		{Header: "From", Value: func(v models.Visitor) any { return when(v.FromDate) }, Class: "hide-sm"},
		{Header: "To", Value: func(v models.Visitor) any { return when(v.ToDate) }, Class: "hide-sm"},
		{Header: "Approval", Value: func(v models.Visitor) any { return string(v.ApprovalStatus) }, Render: badge},
		{Header: "Status", Value: func(v models.Visitor) any { return string(v.VisitorStatus) }, Render: badge},
		{Header: "Photo", Value: func(v models.Visitor) any { return v.Image }, Render: photoLink, Class: "hide-sm"},
	}
}

func badge(value any, _ models.Visitor) template.HTML {
	s, _ := value.(string)
	if s == "" {
		return ""
	}
	return template.HTML(`<span class="badge badge-` + template.HTMLEscapeString(strings.ToLower(s)) + `">` +
		template.HTMLEscapeString(s) + `</span>`)
}

func photoLink(value any, _ models.Visitor) template.HTML {
	href, _ := value.(string)
	if href == "" {
		return ""
	}
	return screen.CellLink(href, "View")
}

// ServeList renders the visitors page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	ctrl := h.controller(st, screen.API(h.API, r))

	q := screen.ParseQuery(r)
	if err := ctrl.Show(r.Context(), q.Page, q.Search); err != nil {
		if gateway.IsUnauthorized(err) {
			screen.Expired(w, r)
			return
		}
		h.Log.Warn("visitors fetch failed", zap.Error(err))
	}

	if screen.IsHTMX(r) {
		screen.RenderTable(w, h.tableView(r, ctrl.View()))
		return
	}
	templates.Render(w, r, "visitors_list", listData{
		BaseVM: viewdata.NewBaseVM(w, r, "Visitors", "/dashboard"),
		Table:  h.tableView(r, ctrl.View()),
	})
}

// ServeTable swaps in another page of the table.
func (h *Handler) ServeTable(w http.ResponseWriter, r *http.Request) {
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	ctrl := h.controller(st, screen.API(h.API, r))

	q := screen.ParseQuery(r)
	if err := ctrl.Show(r.Context(), q.Page, q.Search); err != nil {
		if gateway.IsUnauthorized(err) {
			screen.Expired(w, r)
			return
		}
		h.Log.Warn("visitors fetch failed", zap.Error(err))
	}
	screen.RenderTable(w, h.tableView(r, ctrl.View()))
}

// ServeSearch runs the debounced search.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	ctrl := h.controller(st, screen.API(h.API, r))

	select {
	case <-ctrl.Search(r.Context(), r.URL.Query().Get("q")):
	case <-r.Context().Done():
		return
	}
	screen.RenderTable(w, h.tableView(r, ctrl.View()))
}

// Every role may add visitors; edit depends on the record and the role's
// edit mode, delete on visitors.delete.
func (h *Handler) tableView(r *http.Request, v screen.View[models.Visitor]) datatable.View {
	role, _, _, _ := authz.UserCtx(r)
	canDelete := visitorpolicy.CanDelete(role)

	return datatable.Table[models.Visitor]{
		ID:         tableID,
		BasePath:   basePath,
		Columns:    h.columns(),
		Rows:       v.Data,
		RowID:      models.Visitor.GetID,
		Search:     v.Search,
		Loading:    v.Loading(),
		Error:      v.Error,
		EmptyText:  "No visitors found.",
		Pagination: v.Pagination,
		Page:       v.Page,
		CanAdd:     visitorpolicy.CanAdd(role),
		AddLabel:   "Add visitor",
		CanEdit:    func(vis models.Visitor) bool { return visitorpolicy.CanEdit(role, vis) },
		CanDelete:  func(models.Visitor) bool { return canDelete },
	}.View()
}
