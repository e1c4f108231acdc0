package visitors

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	vp "github.com/dalemusser/visitdesk/internal/app/policy/visitorpolicy"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/app/system/gates"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const (
	msgGone   = "That visitor is no longer on this page. Refresh and try again."
	msgLocked = "Denied visitors can no longer be edited."
)

// options loads the departments the request's user may pick. A failure is
// logged and yields nil, which leaves the department unchecked here; the
// backend still enforces ownership.
func (h *Handler) options(r *http.Request, api *gateway.Client) []formdialog.Option {
	role, _, uid, _ := authz.UserCtx(r)
	opts, err := apartmentOptions(r.Context(), api, role, uid, authz.CurrentSocietyID(r))
	if err != nil {
		h.Log.Warn("department options unavailable", zap.Error(err))
		return nil
	}
	return opts
}

func (h *Handler) dialog(r *http.Request, schema *formdialog.Schema, id models.ID, vals formdialog.Values, errs formdialog.Errors) formdialog.Dialog {
	d := formdialog.Dialog{
		ID:        dialogID,
		Title:     "Add visitor",
		Action:    basePath,
		Target:    "#" + screen.DialogSlot,
		CSRFToken: csrf.Token(r),
		Schema:    schema,
		Values:    vals,
		Errors:    errs,
	}
	if id != "" {
		d.Title = "Edit visitor"
		d.Action = basePath + "/" + id.String()
	}
	return d
}

// editable returns the cached visitor the request's user may edit, and the
// mode they edit it in. It answers the request itself when it returns false.
func (h *Handler) editable(w http.ResponseWriter, r *http.Request, cached func(models.ID) (models.Visitor, bool), id models.ID) (models.Visitor, vp.EditMode, bool) {
	v, found := cached(id)
	if !found {
		screen.Failed(w, msgGone)
		return v, vp.ModeNone, false
	}
	if v.Locked() {
		screen.Failed(w, msgLocked)
		return v, vp.ModeNone, false
	}
	role, _, _, _ := authz.UserCtx(r)
	mode := vp.ModeFor(role)
	if mode == vp.ModeNone {
		screen.Failed(w, "You cannot edit visitors.")
		return v, mode, false
	}
	return v, mode, true
}

// ServeNew opens the add dialog.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.VisitorsAdd) {
		return
	}
	opts := h.options(r, screen.API(h.API, r))
	schema := visitorSchema(vp.ModeDetails, opts, h.Loc)

	vals := schema.Defaults()
	if len(opts) == 1 {
		vals.Set(vp.FieldApartment, opts[0].Value)
	}
	screen.RenderDialog(w, h.dialog(r, schema, "", vals, nil))
}

// ServeEdit opens the edit dialog in the user's edit mode.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.VisitorsEdit) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	id := models.ID(chi.URLParam(r, "id"))
	v, mode, ok := h.editable(w, r, st.Visitors.Find, id)
	if !ok {
		return
	}

	var opts []formdialog.Option
	if mode == vp.ModeDetails {
		opts = h.options(r, screen.API(h.API, r))
	}
	screen.RenderDialog(w, h.dialog(r, visitorSchema(mode, opts, h.Loc), id, visitorValues(v, h.Loc), nil))
}

// HandleCreate validates the add dialog and creates the visitor, stamped
// with its creator. New visitors start Pending and Scheduled.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.VisitorsAdd) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	role, _, uid, _ := authz.UserCtx(r)
	schema := visitorSchema(vp.ModeDetails, h.options(r, api), h.Loc)

	var created models.Visitor
	sub, err := schema.Submit(r, schema.Defaults(), func(v formdialog.Values, files formdialog.Files) error {
		in := visitorInput(v, nil, h.Loc)
		in.ApprovalStatus = models.ApprovalPending
		in.VisitorStatus = models.VisitorScheduled
		vp.StampCreator(&in, uid.String(), role)

		up, done, err := uploads(files, nil)
		if err != nil {
			return err
		}
		defer done()

		created, err = ctrl.Create(r.Context(), func(ctx context.Context) (models.Visitor, error) {
			return api.CreateVisitor(ctx, in, up)
		})
		return err
	})
	if !sub.Valid() {
		screen.RenderDialog(w, h.dialog(r, schema, "", sub.Values, sub.Errors))
		return
	}
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "create", err)
		return
	}

	h.Audit.RecordCreated(r.Context(), r, "visitor", created.ID.String(), created.Name)
	screen.Saved(w, h.tableView(r, ctrl.View()), "Visitor added.")
}

// HandleUpdate applies the fields the user's mode opens and that actually
// changed. Security moving the lifecycle stamps arrival or departure.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.VisitorsEdit) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	id := models.ID(chi.URLParam(r, "id"))

	prev, mode, ok := h.editable(w, r, st.Visitors.Find, id)
	if !ok {
		return
	}
	var opts []formdialog.Option
	if mode == vp.ModeDetails {
		opts = h.options(r, api)
	}
	schema := visitorSchema(mode, opts, h.Loc)
	original := visitorValues(prev, h.Loc)

	var changed []string
	sub, err := schema.Submit(r, original, func(v formdialog.Values, files formdialog.Files) error {
		changed = schema.Changed(original, v)
		if len(changed) == 0 {
			return nil
		}
		in := visitorInput(v, changed, h.Loc)
		if mode == vp.ModeSecurity {
			vp.StampLifecycle(&in, prev.VisitorStatus, h.Now())
		}

		up, done, err := uploads(files, changed)
		if err != nil {
			return err
		}
		defer done()

		_, err = ctrl.Update(r.Context(), func(ctx context.Context) (models.Visitor, error) {
			return api.UpdateVisitor(ctx, id, in, up)
		})
		return err
	})
	if !sub.Valid() {
		screen.RenderDialog(w, h.dialog(r, schema, id, sub.Values, sub.Errors))
		return
	}
	if err != nil {
		screen.Reject(w, r, h.Log, resource, "update", err)
		return
	}

	msg := "No changes to save."
	if len(changed) > 0 {
		h.Audit.RecordUpdated(r.Context(), r, "visitor", id.String(), changed)
		msg = "Visitor updated."
	}
	screen.Saved(w, h.tableView(r, ctrl.View()), msg)
}

// HandleDelete removes a visitor.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.VisitorsDelete) {
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
		return api.DeleteVisitor(ctx, id)
	}); err != nil {
		screen.Reject(w, r, h.Log, resource, "delete", err)
		return
	}

	h.Audit.RecordDeleted(r.Context(), r, "visitor", id.String())
	screen.Saved(w, h.tableView(r, ctrl.View()), "Visitor deleted.")
}
