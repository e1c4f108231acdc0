package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/visitdesk/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		APIBaseURL:     "https://api.example.com/api",
		APITimeout:     10 * time.Second,
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "visitdesk",
		SessionKey:     "a-production-grade-session-key-0123456789",
		CSRFKey:        "0123456789abcdef0123456789abcdef",
		PhoneHashKey:   "phone-key",
		PageSize:       10,
		SearchDebounce: 500 * time.Millisecond,
		TimeZone:       "Asia/Kolkata",
		StateIdleTTL:   30 * time.Minute,
		OTPRateLimit:   5,
		OTPRateWindow:  10 * time.Minute,
		AuditLogAuth:   "log",
		AuditLogAdmin:  "log",
		AuditRetention: 90 * 24 * time.Hour,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid dev", core: dev, mutate: func(*AppConfig) {}},
		{name: "valid prod", core: prod, mutate: func(*AppConfig) {}},
		{name: "relative api url", core: dev, mutate: func(c *AppConfig) { c.APIBaseURL = "/api" }, wantErr: "api_base_url"},
		{name: "ftp api url", core: dev, mutate: func(c *AppConfig) { c.APIBaseURL = "ftp://api.example.com" }, wantErr: "api_base_url"},
		{name: "unknown zone", core: dev, mutate: func(c *AppConfig) { c.TimeZone = "Mars/Olympus" }, wantErr: "time_zone"},
		{name: "short csrf key", core: dev, mutate: func(c *AppConfig) { c.CSRFKey = "short" }, wantErr: "csrf_key"},
		{name: "zero page size", core: dev, mutate: func(c *AppConfig) { c.PageSize = 0 }, wantErr: "page_size"},
		{name: "short session key in prod", core: prod, mutate: func(c *AppConfig) { c.SessionKey = "tiny" }, wantErr: "session_key"},
		{name: "dev session key in prod", core: prod, mutate: func(c *AppConfig) {
			c.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
		}, wantErr: "session_key"},
		{name: "short session key allowed in dev", core: dev, mutate: func(c *AppConfig) { c.SessionKey = "tiny" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(tt.core, cfg, testLogger())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLocation_FallsBackToLocal(t *testing.T) {
	if got := location("Asia/Kolkata", testLogger()); got.String() != "Asia/Kolkata" {
		t.Errorf("location = %v, want Asia/Kolkata", got)
	}
	if got := location("Nowhere/Special", testLogger()); got != time.Local {
		t.Errorf("location = %v, want time.Local", got)
	}
}

func TestNewRuntime_WithoutDatabase(t *testing.T) {
	rt, err := newRuntime(validAppConfig(), DBDeps{}, testLogger())
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	if rt.API == nil || rt.States == nil || rt.Limiter == nil || rt.Audit == nil {
		t.Fatalf("runtime incomplete: %+v", rt)
	}
	if rt.Logins != nil {
		t.Error("login store should be nil without a database")
	}
	want := []string{"state-eviction", "ratelimit-sweep"}
	if got := rt.Scheduler.Jobs(); !slices.Equal(got, want) {
		t.Errorf("jobs = %v, want %v", got, want)
	}
	if rt.API.BaseURL() != "https://api.example.com/api" {
		t.Errorf("api base = %q", rt.API.BaseURL())
	}
}

func TestNewRuntime_WithDatabaseSchedulesPrune(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rt, err := newRuntime(validAppConfig(), DBDeps{MongoDatabase: db}, testLogger())
	if err != nil {
		t.Fatalf("newRuntime: %v", err)
	}
	if rt.Logins == nil {
		t.Error("login store should be set with a database")
	}
	if !slices.Contains(rt.Scheduler.Jobs(), "audit-prune") {
		t.Errorf("jobs = %v, want audit-prune", rt.Scheduler.Jobs())
	}
}

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// Idempotent.
	if err := EnsureSchema(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema second run: %v", err)
	}
}

func TestStartup_RequiresRuntime(t *testing.T) {
	err := Startup(context.Background(), &config.CoreConfig{}, validAppConfig(), DBDeps{}, testLogger())
	if err == nil {
		t.Fatal("Startup without runtime should fail")
	}
}

func TestShutdown_NoDeps(t *testing.T) {
	if err := Shutdown(context.Background(), &config.CoreConfig{}, validAppConfig(), DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestCSRFMiddleware_RejectsUnsignedPost(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := csrfMiddleware(validAppConfig().CSRFKey, false, testLogger())(ok)

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/visitor", nil))
	if get.Code != http.StatusNoContent {
		t.Errorf("GET status = %d, want %d", get.Code, http.StatusNoContent)
	}

	req := httptest.NewRequest(http.MethodPost, "/visitor", nil)
	req.Header.Set("HX-Request", "true")
	post := httptest.NewRecorder()
	h.ServeHTTP(post, req)
	if post.Code != http.StatusForbidden {
		t.Errorf("POST status = %d, want %d", post.Code, http.StatusForbidden)
	}
	if post.Header().Get("HX-Trigger") == "" {
		t.Error("expected an error toast on a rejected HTMX post")
	}
}
