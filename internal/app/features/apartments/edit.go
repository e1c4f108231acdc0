package apartments

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/app/system/gates"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

func (h *Handler) options(r *http.Request, api *gateway.Client) (options, error) {
	role, _, _, _ := authz.UserCtx(r)
	o, err := loadOptions(r.Context(), api, role, authz.CurrentSocietyID(r))
	if err != nil {
		h.Log.Warn("department options unavailable", zap.Error(err))
	}
	return o, err
}

func (h *Handler) dialog(r *http.Request, o options, id models.ID, vals formdialog.Values, errs formdialog.Errors) formdialog.Dialog {
	d := formdialog.Dialog{
		ID:        dialogID,
		Title:     "Add department",
		Action:    basePath,
		Target:    "#" + screen.DialogSlot,
		CSRFToken: csrf.Token(r),
		Schema:    apartmentSchema(o),
		Values:    vals,
		Errors:    errs,
	}
	if id != "" {
		d.Title = "Edit department"
		d.Action = basePath + "/" + id.String()
	}
	return d
}

// ServeNew opens the add dialog.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.ApartmentsManage) {
		return
	}
	o, _ := h.options(r, screen.API(h.API, r))
	screen.RenderDialog(w, h.dialog(r, o, "", apartmentSchema(o).Defaults(), nil))
}

// ServeEdit opens the edit dialog for a department on the current page.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.ApartmentsManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	id := models.ID(chi.URLParam(r, "id"))
	a, found := st.Apartments.Find(id)
	if !found {
		screen.Failed(w, "That department is no longer on this page. Refresh and try again.")
		return
	}
	o, _ := h.options(r, screen.API(h.API, r))
	screen.RenderDialog(w, h.dialog(r, o, id, apartmentValues(a), nil))
}

// HandleCreate validates and creates a department. Society and owner must
// come from the dialog's choices.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.ApartmentsManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)

	// Choices are checked against what this user may pick, so a failed
	// load blocks the write.
	o, err := h.options(r, api)
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "create", err)
		return
	}
	defaults := apartmentSchema(o).Defaults()
	schema := apartmentSchema(o).With(choicesCheck(o, nil))

	var created models.Apartment
	sub, err := schema.Submit(r, defaults, func(v formdialog.Values, _ formdialog.Files) error {
		in := apartmentInput(v, nil)
		if o.Pinned {
			in.SocietyID = models.ID(o.DefaultSociety)
		}
		var err error
		created, err = ctrl.Create(r.Context(), func(ctx context.Context) (models.Apartment, error) {
			return api.CreateApartment(ctx, in)
		})
		return err
	})
	if !sub.Valid() {
		screen.RenderDialog(w, h.dialog(r, o, "", sub.Values, sub.Errors))
		return
	}
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "create", err)
		return
	}

	h.Audit.RecordCreated(r.Context(), r, "apartment", created.ID.String(), created.Name)
	screen.Saved(w, h.tableView(r, ctrl.View()), "Department created.")
}

// HandleUpdate sends only the fields that changed. Roles pinned to one
// society cannot move a department out of it.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.ApartmentsManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	id := models.ID(chi.URLParam(r, "id"))

	a, found := st.Apartments.Find(id)
	if !found {
		screen.Failed(w, "That department is no longer on this page. Refresh and try again.")
		return
	}
	o, err := h.options(r, api)
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "update", err)
		return
	}
	original := apartmentValues(a)
	schema := apartmentSchema(o).With(choicesCheck(o, original))

	var changed []string
	sub, err := schema.Submit(r, original, func(v formdialog.Values, _ formdialog.Files) error {
		changed = schema.Changed(original, v)
		if len(changed) == 0 {
			return nil
		}
		_, err := ctrl.Update(r.Context(), func(ctx context.Context) (models.Apartment, error) {
			return api.UpdateApartment(ctx, id, apartmentInput(v, changed))
		})
		return err
	})
	if !sub.Valid() {
		screen.RenderDialog(w, h.dialog(r, o, id, sub.Values, sub.Errors))
		return
	}
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "update", err)
		return
	}

	msg := "No changes to save."
	if len(changed) > 0 {
		h.Audit.RecordUpdated(r.Context(), r, "apartment", id.String(), changed)
		msg = "Department updated."
	}
	screen.Saved(w, h.tableView(r, ctrl.View()), msg)
}

// HandleDelete removes a department.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.ApartmentsManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	id := models.ID(chi.URLParam(r, "id"))

	if err := ctrl.Delete(r.Context(), id, func(ctx context.Context) error {
		return api.DeleteApartment(ctx, id)
	}); err != nil {
		screen.Reject(w, r, h.Log, resource, "delete", err)
		return
	}

	h.Audit.RecordDeleted(r.Context(), r, "apartment", id.String())
	screen.Saved(w, h.tableView(r, ctrl.View()), "Department deleted.")
}
