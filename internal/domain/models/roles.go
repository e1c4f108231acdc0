// internal/domain/models/roles.go
package models

import "strings"

// Role is a user role as issued by the backend in the session token.
type Role string

const (
	RoleSuperAdmin      Role = "SuperAdmin"
	RoleAdmin           Role = "Admin"
	RoleManager         Role = "Manager"
	RoleDepartment      Role = "Department"
	RoleUser            Role = "User"
	RoleApartmentTenant Role = "ApartmentTenant"
	RoleSecurity        Role = "Security"
	RoleStaff           Role = "Staff"
)

// AllRoles lists every role the backend knows about, in privilege order.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleManager,
	RoleDepartment,
	RoleUser,
	RoleApartmentTenant,
	RoleSecurity,
	RoleStaff,
}

// ParseRole matches s against the known roles, ignoring case and
// surrounding whitespace. The second result is false for unknown roles.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return Role(s), false
}

// Known reports whether r is one of AllRoles.
func (r Role) Known() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Label returns a human-readable label for the role.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleApartmentTenant:
		return "Apartment Tenant"
	default:
		return string(r)
	}
}

func (r Role) String() string { return string(r) }
