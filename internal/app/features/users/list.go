package users

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/policy/userpolicy"
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

var columns = []datatable.Column[models.User]{
	{Header: "Name", Value: func(u models.User) any { return u.Name }},
	{Header: "Phone", Value: func(u models.User) any { return u.Phone }},
	{Header: "Email", Value: func(u models.User) any { return u.Email }, Class: "hide-sm"},
	{Header: "Role", Value: func(u models.User) any { return u.Role.Label() }},
	{Header: "Society", Value: func(u models.User) any { return societyName(u) }},
}

func societyName(u models.User) string {
	if len(u.CurrentSociety) > 0 {
		return u.CurrentSociety[0].Name
	}
	return ""
}

// ServeList renders the users page.
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
		h.Log.Warn("users fetch failed", zap.Error(err))
	}

	if screen.IsHTMX(r) {
		screen.RenderTable(w, h.tableView(r, ctrl.View()))
		return
	}
	templates.Render(w, r, "users_list", listData{
		BaseVM: viewdata.NewBaseVM(w, r, "Users", "/dashboard"),
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
		h.Log.Warn("users fetch failed", zap.Error(err))
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

func (h *Handler) tableView(r *http.Request, v screen.View[models.User]) datatable.View {
	role, _, _, _ := authz.UserCtx(r)
	canModify := func(u models.User) bool { return userpolicy.CanModify(role, u) }

	return datatable.Table[models.User]{
		ID:         tableID,
		BasePath:   basePath,
		Columns:    columns,
		Rows:       v.Data,
		RowID:      models.User.GetID,
		Search:     v.Search,
		Loading:    v.Loading(),
		Error:      v.Error,
		EmptyText:  "No users found.",
		Pagination: v.Pagination,
		Page:       v.Page,
		CanAdd:     userpolicy.CanManage(role),
		AddLabel:   "Add user",
		CanEdit:    canModify,
		CanDelete:  canModify,
	}.View()
}
