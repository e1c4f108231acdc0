// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// UserCtx returns the user's role, name, backend id, and a found flag.
// Unknown role strings are returned as-is so callers can deny them; an
// empty user id is treated as signed out.
func UserCtx(r *http.Request) (role models.Role, name string, userID models.ID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return "", "", "", false
	}
	role, _ = models.ParseRole(string(user.Role))
	return role, user.Name, models.ID(user.ID), true
}

// CurrentSocietyID returns the signed-in user's current society. The
// session cookie is read first; a session that signed in before its profile
// loaded falls back to the profile cached in the request's state.
func CurrentSocietyID(r *http.Request) models.ID {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	if user.SocietyID != "" {
		return models.ID(user.SocietyID)
	}
	if st, ok := appstate.FromRequest(r); ok {
		if prof, ok := st.Profile(); ok {
			return prof.CurrentSocietyRef()
		}
	}
	return ""
}

// AssignableRoles returns the roles actor may give to another user.
// Admins cannot mint other admins; Managers cannot mint Managers either.
func AssignableRoles(actor models.Role) []models.Role {
	var out []models.Role
	for _, r := range models.AllRoles {
		switch actor {
		case models.RoleSuperAdmin:
			out = append(out, r)
		case models.RoleAdmin:
			if r != models.RoleSuperAdmin && r != models.RoleAdmin {
				out = append(out, r)
			}
		case models.RoleManager:
			if r != models.RoleSuperAdmin && r != models.RoleAdmin && r != models.RoleManager {
				out = append(out, r)
			}
		}
	}
	return out
}

// CanAssignRole reports whether actor may give role to another user.
func CanAssignRole(actor, role models.Role) bool {
	for _, r := range AssignableRoles(actor) {
		if r == role {
			return true
		}
	}
	return false
}

// SeesAllSocieties reports whether role works across every society rather
// than the session's current one.
func SeesAllSocieties(role models.Role) bool {
	return role == models.RoleSuperAdmin
}
