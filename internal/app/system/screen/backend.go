package screen

import (
	"net/http"

	uierrors "github.com/dalemusser/visitdesk/internal/app/features/errors"
	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// API returns base authenticated as the signed-in user of r.
func API(base *gateway.Client, r *http.Request) *gateway.Client {
	if u, ok := auth.CurrentUser(r); ok {
		return base.WithToken(u.Token)
	}
	return base.WithToken("")
}

// Session returns the request's application state. When the state
// middleware did not run it answers with a server error and returns false.
func Session(w http.ResponseWriter, r *http.Request, log *zap.Logger) (*appstate.State, bool) {
	if st, ok := appstate.FromRequest(r); ok {
		return st, true
	}
	el := uierrors.NewErrorLogger(log)
	if IsHTMX(r) {
		el.HTMXLogServerError(w, r, "session state missing", nil, "Your session could not be loaded. Please reload the page.")
	} else {
		el.LogServerError(w, r, "session state missing", nil, "", "/dashboard")
	}
	return nil, false
}

// Reject answers a failed backend write from an HTMX request.
//
// Business rejections are logged at info and shown verbatim. Transport,
// server and decode failures are logged with their cause and shown as a
// generic message. A 401 ends the session.
func Reject(w http.ResponseWriter, r *http.Request, log *zap.Logger, resource, op string, err error) {
	kind := gateway.KindOf(err)
	fields := []zap.Field{
		zap.String("resource", resource),
		zap.String("op", op),
		zap.String("kind", string(kind)),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	switch kind {
	case gateway.KindBusiness, gateway.KindNotFound, gateway.KindForbidden, gateway.KindUnauthorized:
		log.Info("backend rejected request", fields...)
	default:
		log.Error("backend request failed", fields...)
	}

	if kind == gateway.KindUnauthorized {
		Expired(w, r)
		return
	}
	Failed(w, gateway.UserMessage(err))
}

// Expired sends the browser to end a session whose token the backend
// rejected.
func Expired(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", auth.ExpiredPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, auth.ExpiredPath, http.StatusSeeOther)
}
