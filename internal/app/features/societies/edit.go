package societies

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

func (h *Handler) dialog(r *http.Request, api *gateway.Client, id models.ID, vals formdialog.Values, errs formdialog.Errors) formdialog.Dialog {
	opts, err := adminOptions(r.Context(), api)
	if err != nil {
		h.Log.Warn("admin options unavailable", zap.Error(err))
	}
	d := formdialog.Dialog{
		ID:        dialogID,
		Title:     "Add society",
		Action:    basePath,
		Target:    "#" + screen.DialogSlot,
		CSRFToken: csrf.Token(r),
		Schema:    societySchema(opts),
		Values:    vals,
		Errors:    errs,
	}
	if id != "" {
		d.Title = "Edit society"
		d.Action = basePath + "/" + id.String()
	}
	return d
}

// find returns society id from the cached page, asking the backend when
// it is not there.
func find(ctx context.Context, cached func(models.ID) (models.Society, bool), api *gateway.Client, id models.ID) (models.Society, error) {
	if s, ok := cached(id); ok {
		return s, nil
	}
	return api.GetSociety(ctx, id)
}

// ServeNew opens the add dialog.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.SocietiesCreate) {
		return
	}
	api := screen.API(h.API, r)
	screen.RenderDialog(w, h.dialog(r, api, "", societySchema(nil).Defaults(), nil))
}

// ServeEdit opens the edit dialog for one society.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.SocietiesEdit) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	id := models.ID(chi.URLParam(r, "id"))

	s, err := find(r.Context(), st.Societies.Find, api, id)
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "get", err)
		return
	}
	screen.RenderDialog(w, h.dialog(r, api, id, societyValues(s), nil))
}

// HandleCreate validates the add dialog and creates the society.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.SocietiesCreate) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	schema := societySchema(nil)

	var created models.Society
	sub, err := schema.Submit(r, schema.Defaults(), func(v formdialog.Values, _ formdialog.Files) error {
		var err error
		created, err = ctrl.Create(r.Context(), func(ctx context.Context) (models.Society, error) {
			return api.CreateSociety(ctx, societyInput(v, nil))
		})
		return err
	})
	if !sub.Valid() {
		screen.RenderDialog(w, h.dialog(r, api, "", sub.Values, sub.Errors))
		return
	}
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "create", err)
		return
	}

	h.Audit.RecordCreated(r.Context(), r, "society", created.ID.String(), created.Name)
	screen.Saved(w, h.tableView(r, ctrl.View()), "Society created.")
}

// HandleUpdate validates the edit dialog and sends only the changed fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.SocietiesEdit) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	id := models.ID(chi.URLParam(r, "id"))

	s, err := find(r.Context(), st.Societies.Find, api, id)
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "get", err)
		return
	}
	original := societyValues(s)
	schema := societySchema(nil)

	var changed []string
	sub, err := schema.Submit(r, original, func(v formdialog.Values, _ formdialog.Files) error {
		changed = schema.Changed(original, v)
		if len(changed) == 0 {
			return nil
		}
		_, err := ctrl.Update(r.Context(), func(ctx context.Context) (models.Society, error) {
			return api.UpdateSociety(ctx, id, societyInput(v, changed))
		})
		return err
	})
	if !sub.Valid() {
		screen.RenderDialog(w, h.dialog(r, api, id, sub.Values, sub.Errors))
		return
	}
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "update", err)
		return
	}

	msg := "No changes to save."
	if len(changed) > 0 {
		h.Audit.RecordUpdated(r.Context(), r, "society", id.String(), changed)
		msg = "Society updated."
	}
	screen.Saved(w, h.tableView(r, ctrl.View()), msg)
}

// HandleDelete removes a society. The backend refuses societies that still
// have apartments; that message is shown as-is.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.SocietiesDelete) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	id := models.ID(chi.URLParam(r, "id"))

	err := ctrl.Delete(r.Context(), id, func(ctx context.Context) error {
		return api.DeleteSociety(ctx, id)
	})
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "delete", err)
		return
	}

	h.Audit.RecordDeleted(r.Context(), r, "society", id.String())
	screen.Saved(w, h.tableView(r, ctrl.View()), "Society deleted.")
}
