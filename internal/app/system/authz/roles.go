// internal/app/system/authz/roles.go
package authz

import (
	"net/http"

	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// Capability names one thing a role may see or do.
type Capability string

const (
	Dashboard Capability = "dashboard"

	UsersView   Capability = "users.view"
	UsersManage Capability = "users.manage"

	SocietiesView   Capability = "societies.view"
	SocietiesEdit   Capability = "societies.edit"
	SocietiesCreate Capability = "societies.create"
	SocietiesDelete Capability = "societies.delete"

	ApartmentsView   Capability = "apartments.view"
	ApartmentsManage Capability = "apartments.manage"

	VisitorsView   Capability = "visitors.view"
	VisitorsAdd    Capability = "visitors.add"
	VisitorsEdit   Capability = "visitors.edit"
	VisitorsDelete Capability = "visitors.delete"
)

// Set is the capability set of one role. The zero Set grants nothing.
type Set map[Capability]struct{}

// Has reports whether c is in the set. Templates call it as
// {{ if .Caps.Has "users.manage" }}.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func setOf(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

var (
	visitorFloor = []Capability{Dashboard, VisitorsView, VisitorsAdd, VisitorsEdit}

	managerCaps = append([]Capability{
		UsersView, UsersManage,
		ApartmentsView, ApartmentsManage,
		VisitorsDelete,
	}, visitorFloor...)

	adminCaps = append([]Capability{SocietiesView, SocietiesEdit}, managerCaps...)

	superAdminCaps = append([]Capability{SocietiesCreate, SocietiesDelete}, adminCaps...)

	roleCaps = map[models.Role]Set{
		models.RoleSuperAdmin:      setOf(superAdminCaps...),
		models.RoleAdmin:           setOf(adminCaps...),
		models.RoleManager:         setOf(managerCaps...),
		models.RoleDepartment:      setOf(visitorFloor...),
		models.RoleSecurity:        setOf(visitorFloor...),
		models.RoleUser:            setOf(visitorFloor...),
		models.RoleApartmentTenant: setOf(visitorFloor...),
		models.RoleStaff:           setOf(visitorFloor...),
	}
)

// CapsFor returns the capability set of role. Unknown roles get an empty set.
func CapsFor(role models.Role) Set {
	if s, ok := roleCaps[role]; ok {
		return s
	}
	return Set{}
}

// Can reports whether role holds capability c.
func Can(role models.Role, c Capability) bool {
	return CapsFor(role).Has(c)
}

// Caps returns the capability set of the request's user.
func Caps(r *http.Request) Set {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return Set{}
	}
	return CapsFor(role)
}

// HasCapability reports whether the request's user holds c.
func HasCapability(r *http.Request, c Capability) bool {
	return Caps(r).Has(c)
}

// Screen is one top-level screen and the capability that opens it.
type Screen struct {
	Path  string
	Label string
	Cap   Capability
}

// Screens in menu order. The route gate and the side navigation both
// read this table.
var Screens = []Screen{
	{Path: "/dashboard", Label: "Dashboard", Cap: Dashboard},
	{Path: "/user", Label: "Users", Cap: UsersView},
	{Path: "/society", Label: "Societies", Cap: SocietiesView},
	{Path: "/department", Label: "Departments", Cap: ApartmentsView},
	{Path: "/visitor", Label: "Visitors", Cap: VisitorsView},
}

// ScreensFor returns the screens role may open, in menu order.
func ScreensFor(role models.Role) []Screen {
	var out []Screen
	for _, s := range Screens {
		if Can(role, s.Cap) {
			out = append(out, s)
		}
	}
	return out
}
