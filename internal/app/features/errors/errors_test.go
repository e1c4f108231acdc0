package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/visitdesk/internal/app/features/errors"
	"github.com/dalemusser/visitdesk/internal/app/system/flash"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuthMessage(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{uierrors.CodeAccessDenied, "You do not have permission to sign in."},
		{uierrors.CodeVerification, "The sign in code has expired or has already been used."},
		{"", "Unable to sign in."},
		{"SomethingElse", "Unable to sign in."},
	}
	for _, tt := range tests {
		if got := uierrors.AuthMessage(tt.code); got != tt.want {
			t.Errorf("AuthMessage(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func decodeToasts(t *testing.T, rec *httptest.ResponseRecorder) []flash.Toast {
	t.Helper()
	var payload map[string][]flash.Toast
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &payload); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	return payload[flash.TriggerEvent]
}

func TestErrorLogger_HTMXServerError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	req := httptest.NewRequest("POST", "/visitor", nil)
	rec := httptest.NewRecorder()
	el.HTMXLogServerError(rec, req, "create visitor failed", errors.New("dial tcp: refused"), "Could not save the visitor.")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := rec.Header().Get("HX-Reswap"); got != "none" {
		t.Errorf("HX-Reswap: got %q, want none", got)
	}
	toasts := decodeToasts(t, rec)
	if len(toasts) != 1 || toasts[0].Kind != flash.Error || toasts[0].Message != "Could not save the visitor." {
		t.Errorf("toasts: got %+v", toasts)
	}

	entries := logs.FilterMessage("create visitor failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/visitor" || fields["error"] != "dial tcp: refused" {
		t.Errorf("log fields: got %v", fields)
	}
	if rec.Body.Len() != 0 {
		t.Error("the cause must not reach the response body")
	}
}

func TestErrorLogger_HTMXBadRequestAndForbidden(t *testing.T) {
	el := uierrors.NewErrorLogger(nil)

	rec := httptest.NewRecorder()
	el.HTMXLogBadRequest(rec, httptest.NewRequest("POST", "/user", nil), "bad form", nil, "Invalid form data.")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad request status: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	el.HTMXLogForbidden(rec, httptest.NewRequest("POST", "/society", nil), "denied", "Not allowed.")
	if rec.Code != http.StatusForbidden {
		t.Errorf("forbidden status: got %d", rec.Code)
	}
	if toasts := decodeToasts(t, rec); len(toasts) != 1 || toasts[0].Message != "Not allowed." {
		t.Errorf("toasts: got %+v", toasts)
	}
}
