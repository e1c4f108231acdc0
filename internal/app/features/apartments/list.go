package apartments

import (
	"net/http"

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

var columns = []datatable.Column[models.Apartment]{
	{Header: "Name", Value: func(a models.Apartment) any { return a.Name }},
	{Header: "Society", Value: func(a models.Apartment) any { return a.SocietyName() }},
	{Header: "Owner", Value: func(a models.Apartment) any { return a.OwnerName() }},
	{Header: "Members", Value: func(a models.Apartment) any { return len(a.Users) }, Class: "num hide-sm"},
}

// ServeList renders the departments page.
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
		h.Log.Warn("apartments fetch failed", zap.Error(err))
	}

	if screen.IsHTMX(r) {
		screen.RenderTable(w, h.tableView(r, ctrl.View()))
		return
	}
	templates.Render(w, r, "apartments_list", listData{
		BaseVM: viewdata.NewBaseVM(w, r, "Departments", "/dashboard"),
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
		h.Log.Warn("apartments fetch failed", zap.Error(err))
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

func (h *Handler) tableView(r *http.Request, v screen.View[models.Apartment]) datatable.View {
	role, _, _, _ := authz.UserCtx(r)
	canManage := authz.Can(role, authz.ApartmentsManage)

	return datatable.Table[models.Apartment]{
		ID:         tableID,
		BasePath:   basePath,
		Columns:    columns,
		Rows:       v.Data,
		RowID:      models.Apartment.GetID,
		Search:     v.Search,
		Loading:    v.Loading(),
		Error:      v.Error,
		EmptyText:  "No departments found.",
		Pagination: v.Pagination,
		Page:       v.Page,
		CanAdd:     canManage,
		AddLabel:   "Add department",
		CanEdit:    func(models.Apartment) bool { return canManage },
		CanDelete:  func(models.Apartment) bool { return canManage },
	}.View()
}
