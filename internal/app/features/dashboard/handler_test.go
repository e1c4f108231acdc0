package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/visitdesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Backend) {
	t.Helper()
	be := testutil.NewBackend(t)
	h := NewHandler(be.Client(t), time.UTC, zap.NewNop())
	h.Now = func() time.Time { return time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC) }
	return h, be
}

// serve runs fn, tolerating template panics when the engine is not booted.
func serve(fn http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() {
		if r := recover(); r != nil {
			// Template rendering may panic in tests - that's expected
		}
	}()
	fn(w, r)
}

func TestLoadSociety_CurrentSociety(t *testing.T) {
	h, be := newTestHandler(t)
	be.JSON(http.MethodGet, "/societies/1", http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"id": "1", "name": "Green Park"},
	})

	req, st := testutil.WithState(testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.ManagerUser()))
	s, found, err := h.loadSociety(req, st, h.API.WithToken("test-token"))
	if err != nil {
		t.Fatalf("loadSociety: %v", err)
	}
	if !found || s.Name != "Green Park" {
		t.Errorf("got %+v found=%v", s, found)
	}
	if n := be.Count(http.MethodGet, "/users/user/me"); n != 0 {
		t.Errorf("profile fetched %d times, want 0", n)
	}
}

func TestLoadSociety_FallsBackToProfile(t *testing.T) {
	h, be := newTestHandler(t)
	be.JSON(http.MethodGet, "/users/user/me", http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"id": "42", "name": "Root", "role": "SuperAdmin", "currentSocietyId": "9"},
	})
	be.JSON(http.MethodGet, "/societies/9", http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"id": "9", "name": "Lake View"},
	})

	u := testutil.SuperAdminUser()
	u.SocietyID = ""
	req, st := testutil.WithState(testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", u))

	s, found, err := h.loadSociety(req, st, h.API.WithToken(u.Token))
	if err != nil || !found || s.Name != "Lake View" {
		t.Errorf("got %+v found=%v err=%v", s, found, err)
	}
	if _, ok := st.Profile(); !ok {
		t.Error("profile should be cached on the session state")
	}
}

func TestLoadSociety_NoSociety(t *testing.T) {
	h, be := newTestHandler(t)
	be.JSON(http.MethodGet, "/users/user/me", http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"id": "42", "name": "Root", "role": "SuperAdmin"},
	})

	u := testutil.SuperAdminUser()
	u.SocietyID = ""
	req, st := testutil.WithState(testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", u))

	_, found, err := h.loadSociety(req, st, h.API.WithToken(u.Token))
	if err != nil || found {
		t.Errorf("found=%v err=%v, want no society and no error", found, err)
	}
	for _, r := range be.Requests() {
		if r.Method == http.MethodGet && r.Path != "/users/user/me" {
			t.Errorf("unexpected backend call %s %s", r.Method, r.Path)
		}
	}
}

func TestServeDashboard_ExpiredTokenEndsSession(t *testing.T) {
	h, be := newTestHandler(t)
	be.JSON(http.MethodGet, "/societies/1", http.StatusUnauthorized, map[string]any{"message": "jwt expired"})

	req, _ := testutil.WithState(testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.AdminUser()))
	rec := httptest.NewRecorder()
	h.ServeDashboard(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/logout/expired" {
		t.Errorf("Location: got %q, want /auth/logout/expired", loc)
	}
}

func TestServeDashboard_ComputesForCurrentSociety(t *testing.T) {
	h, be := newTestHandler(t)
	be.JSON(http.MethodGet, "/societies/1", http.StatusOK, map[string]any{
		"success": true,
		"data": models.Society{ID: "1", Name: "Green Park", Apartments: []models.Apartment{{
			Name: "A-101",
			Visitors: []models.Visitor{{
				FromDate:       time.Date(2026, time.October, 19, 11, 0, 0, 0, time.UTC),
				VisitorsCount:  2,
				ApprovalStatus: models.ApprovalApproved,
				VisitorStatus:  models.VisitorScheduled,
			}},
		}}},
	})

	req, _ := testutil.WithState(testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", testutil.SecurityUser()))
	rec := httptest.NewRecorder()
	serve(h.ServeDashboard, rec, req)

	if n := be.Count(http.MethodGet, "/societies/1"); n != 1 {
		t.Errorf("society fetched %d times, want 1", n)
	}
	if rec.Header().Get("Location") != "" {
		t.Errorf("unexpected redirect to %q", rec.Header().Get("Location"))
	}
}
