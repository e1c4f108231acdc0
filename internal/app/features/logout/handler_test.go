package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/features/logout"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager, *appstate.Registry) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-0123456789", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	states := appstate.NewRegistry()

	// Pass nil for the audit logger in tests (it is nil-safe)
	return logout.NewHandler(sessionMgr, states, nil, logger), sessionMgr, states
}

// signedInCookie signs a user in and returns the resulting cookie.
func signedInCookie(t *testing.T, sm *auth.SessionManager, stateKey string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	err := sm.SignIn(rec, httptest.NewRequest(http.MethodPost, "/auth/login/verify", nil), &auth.SessionUser{
		ID:       "42",
		Role:     "Manager",
		Token:    "tok",
		StateKey: stateKey,
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn set no cookie")
	}
	return cookies[0]
}

func TestHandleLogout_RedirectsToLogin(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != auth.LoginPath {
		t.Errorf("Location: got %q, want %q", loc, auth.LoginPath)
	}
}

func TestHandleLogout_DropsStateAndExpiresCookie(t *testing.T) {
	handler, sm, states := newTestHandler(t)
	states.GetOrCreate("state-1")
	cookie := signedInCookie(t, sm, "state-1")

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	if states.Len() != 0 {
		t.Errorf("states = %d, want 0", states.Len())
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("session cookie MaxAge = %d, want negative", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected the session cookie to be expired")
	}
}

func TestHandleLogout_HTMX(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != auth.LoginPath {
		t.Errorf("HX-Redirect: got %q, want %q", got, auth.LoginPath)
	}
}

func TestHandleExpired_ClearsSessionAndFlagsLogin(t *testing.T) {
	handler, sm, states := newTestHandler(t)
	states.GetOrCreate("state-2")
	cookie := signedInCookie(t, sm, "state-2")

	req := httptest.NewRequest(http.MethodGet, auth.ExpiredPath, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.HandleExpired(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != auth.LoginPath+"?expired=1" {
		t.Errorf("Location: got %q", loc)
	}
	if states.Len() != 0 {
		t.Errorf("states = %d, want 0", states.Len())
	}
}
