package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/app/system/authz"
	"github.com/dalemusser/visitdesk/internal/domain/models"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false without a user")
	}
}

func TestUserCtx_NormalizesRole(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: "7", Name: "Ravi", Role: "superadmin"})

	role, name, id, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != models.RoleSuperAdmin {
		t.Errorf("expected SuperAdmin, got %q", role)
	}
	if name != "Ravi" || id != "7" {
		t.Errorf("unexpected name/id %q/%q", name, id)
	}
}

func TestCurrentSocietyID_FromSession(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: "1", Role: models.RoleAdmin, SocietyID: "5"})
	if got := authz.CurrentSocietyID(req); got != "5" {
		t.Errorf("CurrentSocietyID = %q, want 5", got)
	}
}

func TestCurrentSocietyID_FallsBackToCachedProfile(t *testing.T) {
	st := appstate.New("k")
	st.SetProfile(models.User{ID: "1", CurrentSocietyID: "3"})

	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: "1", Role: models.RoleAdmin})
	req = req.WithContext(appstate.WithState(req.Context(), st))

	if got := authz.CurrentSocietyID(req); got != "3" {
		t.Errorf("CurrentSocietyID = %q, want 3 from the cached profile", got)
	}
}

func TestCurrentSocietyID_NoProfileYet(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithUser(req, &auth.SessionUser{ID: "1", Role: models.RoleAdmin})
	req = req.WithContext(appstate.WithState(req.Context(), appstate.New("k")))

	if got := authz.CurrentSocietyID(req); got != "" {
		t.Errorf("CurrentSocietyID = %q, want empty", got)
	}
}

func TestCapabilities_MutationControls(t *testing.T) {
	tests := []struct {
		role models.Role
		cap  authz.Capability
		want bool
	}{
		{models.RoleSuperAdmin, authz.SocietiesCreate, true},
		{models.RoleSuperAdmin, authz.SocietiesDelete, true},
		{models.RoleAdmin, authz.SocietiesCreate, false},
		{models.RoleAdmin, authz.SocietiesDelete, false},
		{models.RoleAdmin, authz.SocietiesEdit, true},
		{models.RoleManager, authz.SocietiesView, false},
		{models.RoleManager, authz.UsersManage, true},
		{models.RoleManager, authz.ApartmentsManage, true},
		{models.RoleDepartment, authz.UsersView, false},
		{models.RoleDepartment, authz.VisitorsEdit, true},
		{models.RoleDepartment, authz.VisitorsDelete, false},
		{models.RoleSecurity, authz.VisitorsAdd, true},
		{models.RoleStaff, authz.Dashboard, true},
		{"Janitor", authz.Dashboard, false},
		{"", authz.VisitorsView, false},
	}
	for _, tc := range tests {
		if got := authz.Can(tc.role, tc.cap); got != tc.want {
			t.Errorf("Can(%q, %s) = %v, want %v", tc.role, tc.cap, got, tc.want)
		}
	}
}

func TestCaps_FromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if authz.Caps(req).Has(authz.Dashboard) {
		t.Error("signed-out request should have no capabilities")
	}

	req = auth.WithUser(req, &auth.SessionUser{ID: "1", Role: models.RoleManager})
	if !authz.HasCapability(req, authz.UsersManage) {
		t.Error("manager should manage users")
	}
}

func TestAssignableRoles(t *testing.T) {
	if got := authz.AssignableRoles(models.RoleSuperAdmin); len(got) != len(models.AllRoles) {
		t.Errorf("SuperAdmin should assign every role, got %v", got)
	}

	for _, r := range []models.Role{models.RoleSuperAdmin, models.RoleAdmin} {
		if authz.CanAssignRole(models.RoleAdmin, r) {
			t.Errorf("Admin must not assign %s", r)
		}
	}
	if !authz.CanAssignRole(models.RoleAdmin, models.RoleManager) {
		t.Error("Admin should assign Manager")
	}
	if authz.CanAssignRole(models.RoleManager, models.RoleManager) {
		t.Error("Manager must not assign Manager")
	}
	if !authz.CanAssignRole(models.RoleManager, models.RoleSecurity) {
		t.Error("Manager should assign Security")
	}
	if got := authz.AssignableRoles(models.RoleSecurity); len(got) != 0 {
		t.Errorf("Security assigns nothing, got %v", got)
	}
}
