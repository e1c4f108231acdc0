package screen

import (
	"context"
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ResolveSociety completes sessions that signed in without a society,
// which happens when the profile could not be loaded at sign-in. It loads
// the profile into the request's state and, once it names a society,
// writes the society back to the session cookie so later requests read it
// directly. Must run after the session user and the state are attached.
//
// A failed load is logged and the request continues; handlers that need
// the backend see the same failure themselves.
func ResolveSociety(base *gateway.Client, sm *auth.SessionManager, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.CurrentUser(r)
			if !ok || u.SocietyID != "" {
				next.ServeHTTP(w, r)
				return
			}
			st, ok := appstate.FromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.API())
			prof, err := st.EnsureProfile(ctx, API(base, r).Me)
			cancel()
			if err != nil {
				log.Warn("profile load failed",
					zap.String("user_id", u.ID),
					zap.String("kind", string(gateway.KindOf(err))),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			society := prof.CurrentSocietyRef().String()
			if society == "" {
				// SuperAdmins often have none; the cached profile keeps this cheap.
				next.ServeHTTP(w, r)
				return
			}

			name := u.Name
			if name == "" {
				name = prof.Name
			}
			if err := sm.UpdateProfile(w, r, name, society); err != nil {
				log.Warn("session profile update failed", zap.String("user_id", u.ID), zap.Error(err))
			}

			resolved := *u
			resolved.Name, resolved.SocietyID = name, society
			next.ServeHTTP(w, auth.WithUser(r, &resolved))
		})
	}
}
