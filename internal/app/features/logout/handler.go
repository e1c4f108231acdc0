// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	States     *appstate.Registry
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, states *appstate.Registry, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		States:     states,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /auth/logout. It expires the session cookie,
// drops the per-session state and sends the browser to the sign-in page.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	u, signedIn := h.end(w, r)
	if signedIn {
		h.AuditLog.Logout(r.Context(), r, u.ID, u.SocietyID)
	}
	redirect(w, r, auth.LoginPath)
}

// HandleExpired handles GET /auth/logout/expired, where screens send the
// browser once the backend rejects the session token.
func (h *Handler) HandleExpired(w http.ResponseWriter, r *http.Request) {
	u, signedIn := h.end(w, r)
	if signedIn {
		h.AuditLog.SessionExpired(r.Context(), r, u.ID)
	}
	redirect(w, r, auth.LoginPath+"?expired=1")
}

// end clears the cookie and the session's state, returning who was signed in.
func (h *Handler) end(w http.ResponseWriter, r *http.Request) (*auth.SessionUser, bool) {
	u, signedIn := auth.CurrentUser(r)

	key, err := h.SessionMgr.SignOut(w, r)
	if err != nil {
		// Still send the user away; the cookie may simply be unreadable.
		h.Log.Warn("logout: clear session", zap.Error(err))
	}
	if key == "" && signedIn {
		key = u.StateKey
	}
	if key != "" && h.States != nil {
		h.States.Drop(key)
	}
	return u, signedIn
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", to)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
