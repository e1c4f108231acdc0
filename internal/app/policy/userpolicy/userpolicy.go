// Package userpolicy provides authorization policies for user management.
//
// Authorization rules:
//   - SuperAdmin, Admin and Manager manage users
//   - An actor may only hand out roles below their own (see authz.AssignableRoles)
//   - An actor may only edit or delete users whose current role they could assign
//   - Every role except SuperAdmin and Admin belongs to a society
//   - User and ApartmentTenant accounts also belong to an apartment
package userpolicy

import (
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

// CanManage reports whether actor sees the users screen controls.
func CanManage(actor models.Role) bool {
	return authz.Can(actor, authz.UsersManage)
}

// CanModify reports whether actor may edit or delete target.
func CanModify(actor models.Role, target models.User) bool {
	return CanManage(actor) && authz.CanAssignRole(actor, target.Role)
}

// RoleOptions returns the roles actor may pick from in the user dialog.
func RoleOptions(actor models.Role) []models.Role {
	return authz.AssignableRoles(actor)
}

// NeedsSociety reports whether a user with role must have a current society.
func NeedsSociety(role models.Role) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, "":
		return false
	}
	return true
}

// NeedsApartment reports whether a user with role must be tied to an apartment.
func NeedsApartment(role models.Role) bool {
	return role == models.RoleUser || role == models.RoleApartmentTenant
}
