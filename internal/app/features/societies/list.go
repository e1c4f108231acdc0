package societies

import (
	"net/http"
	"strings"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
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

var columns = []datatable.Column[models.Society]{
	{Header: "Name", Value: func(s models.Society) any { return s.Name }},
	{Header: "Address", Value: func(s models.Society) any { return s.Address }},
	{Header: "City", Value: func(s models.Society) any { return s.City }},
	{Header: "State", Value: func(s models.Society) any { return s.State }, Class: "hide-sm"},
	{Header: "Zip", Value: func(s models.Society) any { return s.Zip }, Class: "hide-sm"},
	{Header: "Phone", Value: func(s models.Society) any { return s.Phone }},
	{Header: "Admins", Value: func(s models.Society) any { return adminNames(s) }},
}

func adminNames(s models.Society) string {
	names := make([]string, 0, len(s.AdminNames))
	for _, u := range s.AdminNames {
		if u.Name != "" {
			names = append(names, u.Name)
		}
	}
	return strings.Join(names, ", ")
}

// ServeList renders the societies page at the page and search term in the
// URL, so /society?page=2&q=green is bookmarkable.
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
		h.Log.Warn("societies fetch failed", zap.Error(err))
	}

	if screen.IsHTMX(r) {
		screen.RenderTable(w, h.tableView(r, ctrl.View()))
		return
	}
	templates.Render(w, r, "societies_list", listData{
		BaseVM: viewdata.NewBaseVM(w, r, "Societies", "/dashboard"),
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
		h.Log.Warn("societies fetch failed", zap.Error(err))
	}
	screen.RenderTable(w, h.tableView(r, ctrl.View()))
}

// ServeSearch feeds a keystroke to the debounced search and renders the
// table once the fetch serving the burst has finished.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	ctrl := h.controller(st, screen.API(h.API, r))

	done := ctrl.Search(r.Context(), r.URL.Query().Get("q"))
	select {
	case <-done:
	case <-r.Context().Done():
		// Superseded by a newer keystroke; HTMX already dropped this request.
		return
	}
	screen.RenderTable(w, h.tableView(r, ctrl.View()))
}

func (h *Handler) tableView(r *http.Request, v screen.View[models.Society]) datatable.View {
	role, _, _, _ := authz.UserCtx(r)
	canEdit := authz.Can(role, authz.SocietiesEdit)
	canDelete := authz.Can(role, authz.SocietiesDelete)

	return datatable.Table[models.Society]{
		ID:         tableID,
		BasePath:   basePath,
		Columns:    columns,
		Rows:       v.Data,
		RowID:      models.Society.GetID,
		Search:     v.Search,
		Loading:    v.Loading(),
		Error:      v.Error,
		EmptyText:  "No societies found.",
		Pagination: v.Pagination,
		Page:       v.Page,
		CanAdd:     authz.Can(role, authz.SocietiesCreate),
		AddLabel:   "Add society",
		CanEdit:    func(models.Society) bool { return canEdit },
		CanDelete:  func(models.Society) bool { return canDelete },
	}.View()
}
