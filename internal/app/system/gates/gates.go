// Package gates decides, for every request, whether it may proceed or must
// be redirected, and offers handler-level capability checks.
//
// # Two-Tier Authorization Pattern
//
//  1. Route gate (Decide, Middleware)
//     A pure function of (path, session). It classifies the path as public,
//     auth-only or role-restricted and returns pass or redirect. Mounted
//     once at the root router so no screen can be reached around it.
//
//  2. Handler-level checks (RequireCapability)
//     Used inside screens for actions narrower than the route, such as
//     creating or deleting a society. They render the forbidden page.
//
// Unknown roles are denied. A signed-in session whose role is not one of
// models.AllRoles can reach only public pages and logout.
package gates

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	uierrors "github.com/dalemusser/visitdesk/internal/app/features/errors"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"go.uber.org/zap"
)

const (
	LoginPath        = auth.LoginPath
	LogoutPath       = "/auth/logout"
	LandingPath      = "/dashboard"
	AccessDeniedPath = "/auth/error?error=AccessDenied"
)

// Session is the part of the session the gate looks at.
type Session struct {
	LoggedIn bool
	Role     models.Role
}

// Action is what the gate does with a request.
type Action int

const (
	Pass Action = iota
	Redirect
)

// Decision is the outcome of Decide.
type Decision struct {
	Action   Action
	Location string
}

// Redirects reports whether the request must go elsewhere.
func (d Decision) Redirects() bool { return d.Action == Redirect }

func (d Decision) String() string {
	if d.Action == Pass {
		return "pass"
	}
	return "redirect " + d.Location
}

func pass() Decision               { return Decision{Action: Pass} }
func redirect(loc string) Decision { return Decision{Action: Redirect, Location: loc} }

// Path classes.
var (
	publicExact = map[string]struct{}{
		"/":                   {},
		"/access-denied":      {},
		"/forbidden":          {},
		"/privacypolicy":      {},
		"/termsandconditions": {},
		"/auth/error":         {},
		"/health":             {},
		"/metrics":            {},
	}
	publicPrefixes = []string{"/static", "/api"}

	authOnlyPrefixes = []string{LoginPath}
)

// Decide returns what to do with a request for p given s. It has no side
// effects and depends on nothing else.
func Decide(p string, s Session) Decision {
	p = clean(p)

	if isPublic(p) {
		return pass()
	}

	if hasAnyPrefix(p, authOnlyPrefixes) {
		if s.LoggedIn {
			return redirect(LandingPath)
		}
		return pass()
	}

	if !s.LoggedIn {
		return redirect(LoginPath)
	}

	if matches(p, LogoutPath) {
		return pass()
	}

	role, known := models.ParseRole(string(s.Role))
	if !known {
		return redirect(AccessDeniedPath)
	}

	for _, sc := range authz.Screens {
		if matches(p, sc.Path) {
			if authz.Can(role, sc.Cap) {
				return pass()
			}
			return redirect(LandingPath)
		}
	}

	// Not in any role's route set.
	return redirect(LandingPath)
}

// SessionFromRequest builds the gate's view of r's session.
func SessionFromRequest(r *http.Request) Session {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Session{}
	}
	return Session{LoggedIn: true, Role: u.Role}
}

// Middleware applies Decide to every request.
//   - HTMX: HX-Redirect header (full page navigation, no partial swap)
//   - HTML and everything else: 303 redirect
//
// Redirects to login carry the requested URI in ?return= for GETs.
func Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFromRequest(r)
			d := Decide(r.URL.Path, s)
			if !d.Redirects() {
				next.ServeHTTP(w, r)
				return
			}

			loc := d.Location
			status := http.StatusForbidden
			if loc == LoginPath {
				status = http.StatusUnauthorized
				if r.Method == http.MethodGet && r.URL.Path != "/" {
					loc += "?return=" + url.QueryEscape(r.URL.RequestURI())
				}
			}
			if loc == AccessDeniedPath {
				logger.Warn("gate denied unknown role",
					zap.String("role", string(s.Role)),
					zap.String("path", r.URL.Path))
			}

			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", loc)
				w.WriteHeader(status)
				return
			}
			http.Redirect(w, r, loc, http.StatusSeeOther)
		})
	}
}

// RequireCapability checks that the request's user holds c. When not, it
// renders the forbidden page (or, for HTMX, an error toast) and returns
// false; the handler should return immediately.
func RequireCapability(w http.ResponseWriter, r *http.Request, c authz.Capability) bool {
	if _, ok := auth.CurrentUser(r); !ok {
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", LoginPath)
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		uierrors.RenderUnauthorized(w, r, LoginPath)
		return false
	}
	if authz.HasCapability(r, c) {
		return true
	}
	if r.Header.Get("HX-Request") == "true" {
		uierrors.NewErrorLogger(nil).HTMXLogForbidden(w, r, "capability denied",
			"You don't have permission to do that.")
		return false
	}
	uierrors.RenderForbidden(w, r, "You don't have permission to do that.", "")
	return false
}

// helpers

func clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func isPublic(p string) bool {
	if _, ok := publicExact[p]; ok {
		return true
	}
	return hasAnyPrefix(p, publicPrefixes)
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, pre := range prefixes {
		if matches(p, pre) {
			return true
		}
	}
	return false
}

// matches reports whether p is prefix itself or below it.
// "/user" matches "/user" and "/user/5" but not "/users".
func matches(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
