package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/policy/userpolicy"
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
	actor, _, _, _ := authz.UserCtx(r)
	o, err := loadOptions(r.Context(), api, actor, authz.CurrentSocietyID(r))
	if err != nil {
		h.Log.Warn("user options unavailable", zap.Error(err))
	}
	d := formdialog.Dialog{
		ID:        dialogID,
		Title:     "Add user",
		Action:    basePath,
		Target:    "#" + screen.DialogSlot,
		CSRFToken: csrf.Token(r),
		Schema:    userSchema(actor, o),
		Values:    vals,
		Errors:    errs,
	}
	if id != "" {
		d.Title = "Edit user"
		d.Action = basePath + "/" + id.String()
	}
	return d
}

// pinSociety keeps actors who cannot work across societies inside their own.
func pinSociety(r *http.Request, in *models.UserInput, actor models.Role) {
	if authz.SeesAllSocieties(actor) {
		return
	}
	if in.CurrentSocietyID != "" || userpolicy.NeedsSociety(in.Role) {
		in.CurrentSocietyID = authz.CurrentSocietyID(r)
	}
}

// ServeNew opens the add dialog.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.UsersManage) {
		return
	}
	vals := formdialog.Values{"currentSocietyId": {authz.CurrentSocietyID(r).String()}}
	screen.RenderDialog(w, h.dialog(r, screen.API(h.API, r), "", vals, nil))
}

// ServeEdit opens the edit dialog.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.UsersManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	actor, _, _, _ := authz.UserCtx(r)
	id := models.ID(chi.URLParam(r, "id"))

	u, found := st.Users.Find(id)
	if !found {
		screen.Failed(w, "That user is no longer on this page. Refresh and try again.")
		return
	}
	if !userpolicy.CanModify(actor, u) {
		screen.Failed(w, "You cannot edit a user with this role.")
		return
	}
	screen.RenderDialog(w, h.dialog(r, screen.API(h.API, r), id, userValues(u), nil))
}

// HandleCreate validates and creates a user.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.UsersManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	actor, _, _, _ := authz.UserCtx(r)
	schema := userSchema(actor, options{})

	var created models.User
	sub, err := schema.Submit(r, formdialog.Values{}, func(v formdialog.Values, _ formdialog.Files) error {
		in := userInput(v, nil)
		pinSociety(r, &in, actor)
		var err error
		created, err = ctrl.Create(r.Context(), func(ctx context.Context) (models.User, error) {
			return api.CreateUser(ctx, in)
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

	h.Audit.RecordCreated(r.Context(), r, "user", created.ID.String(), created.Name)
	screen.Saved(w, h.tableView(r, ctrl.View()), "User created.")
}

// HandleUpdate sends only the fields that changed.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.UsersManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	actor, _, _, _ := authz.UserCtx(r)
	id := models.ID(chi.URLParam(r, "id"))

	u, found := st.Users.Find(id)
	if !found {
		screen.Failed(w, "That user is no longer on this page. Refresh and try again.")
		return
	}
	if !userpolicy.CanModify(actor, u) {
		screen.Failed(w, "You cannot edit a user with this role.")
		return
	}
	original := userValues(u)
	schema := userSchema(actor, options{})

	var changed []string
	sub, err := schema.Submit(r, original, func(v formdialog.Values, _ formdialog.Files) error {
		changed = schema.Changed(original, v)
		if len(changed) == 0 {
			return nil
		}
		in := userInput(v, changed)
		pinSociety(r, &in, actor)
		_, err := ctrl.Update(r.Context(), func(ctx context.Context) (models.User, error) {
			return api.UpdateUser(ctx, id, in)
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
		h.Audit.RecordUpdated(r.Context(), r, "user", id.String(), changed)
		msg = "User updated."
	}
	screen.Saved(w, h.tableView(r, ctrl.View()), msg)
}

// HandleDelete removes a user.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if !gates.RequireCapability(w, r, authz.UsersManage) {
		return
	}
	st, ok := screen.Session(w, r, h.Log)
	if !ok {
		return
	}
	api := screen.API(h.API, r)
	ctrl := h.controller(st, api)
	actor, _, _, _ := authz.UserCtx(r)
	id := models.ID(chi.URLParam(r, "id"))

	if u, found := st.Users.Find(id); found && !userpolicy.CanModify(actor, u) {
		screen.Failed(w, "You cannot delete a user with this role.")
		return
	}

	if err := ctrl.Delete(r.Context(), id, func(ctx context.Context) error {
		return api.DeleteUser(ctx, id)
	}); err != nil {
		screen.Reject(w, r, h.Log, resource, "delete", err)
		return
	}

	h.Audit.RecordDeleted(r.Context(), r, "user", id.String())
	screen.Saved(w, h.tableView(r, ctrl.View()), "User deleted.")
}
