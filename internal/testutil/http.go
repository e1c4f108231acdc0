package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID        string
	Name      string
	Role      models.Role
	SocietyID string
	Token     string
}

// UserWithRole returns a TestUser holding role in society "1".
func UserWithRole(role models.Role) TestUser {
	return TestUser{
		ID:        "42",
		Name:      "Test " + role.Label(),
		Role:      role,
		SocietyID: "1",
		Token:     "test-token",
	}
}

// SuperAdminUser returns a TestUser with the SuperAdmin role.
func SuperAdminUser() TestUser { return UserWithRole(models.RoleSuperAdmin) }

// AdminUser returns a TestUser with the Admin role.
func AdminUser() TestUser { return UserWithRole(models.RoleAdmin) }

// ManagerUser returns a TestUser with the Manager role.
func ManagerUser() TestUser { return UserWithRole(models.RoleManager) }

// SecurityUser returns a TestUser with the Security role.
func SecurityUser() TestUser { return UserWithRole(models.RoleSecurity) }

// DepartmentUser returns a TestUser with the Department role.
func DepartmentUser() TestUser { return UserWithRole(models.RoleDepartment) }

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:        user.ID,
		Name:      user.Name,
		Role:      user.Role,
		SocietyID: user.SocietyID,
		Token:     user.Token,
		StateKey:  uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
}

// WithState attaches a fresh per-session state to the request.
func WithState(r *http.Request) (*http.Request, *appstate.State) {
	s := appstate.New(uuid.NewString())
	return r.WithContext(appstate.WithState(r.Context(), s)), s
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}

// HTMX marks r as an HTMX request.
func HTMX(r *http.Request) *http.Request {
	r.Header.Set("HX-Request", "true")
	return r
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertHXRedirect checks for an HTMX redirect to the expected location.
func (r *ResponseRecorder) AssertHXRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if got := r.Header().Get("HX-Redirect"); got != expectedLocation {
		t.Errorf("HX-Redirect: got %q, want %q", got, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
