package auditlog_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/visitdesk/internal/app/store/audit"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/testutil"
	"go.uber.org/zap"
)

// memStore records events in memory.
type memStore struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memStore) Log(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) all() []audit.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Event(nil), m.events...)
}

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "1", "2", "Admin")
	logger.Logout(ctx, req, "1", "")
	logger.RecordDeleted(ctx, req, "visitor", "9")
}

func TestLogger_ConfigRouting(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auditlog.Config
		wantDB  int
		comment string
	}{
		{"off", auditlog.Config{Auth: "off", Admin: "off"}, 0, "nothing stored"},
		{"log only", auditlog.Config{Auth: "log", Admin: "log"}, 0, "zap only"},
		{"db", auditlog.Config{Auth: "db", Admin: "db"}, 2, "both stored"},
		{"all", auditlog.Config{Auth: "all", Admin: "all"}, 2, "both stored"},
		{"mixed", auditlog.Config{Auth: "off", Admin: "db"}, 1, "admin only"},
		{"empty means all", auditlog.Config{}, 2, "defaults to all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			logger := auditlog.New(store, zap.NewNop(), tt.cfg, nil)
			ctx := context.Background()

			logger.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Success: true})
			logger.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventRecordCreated, Success: true})

			if got := len(store.all()); got != tt.wantDB {
				t.Errorf("%s: stored %d events, want %d", tt.comment, got, tt.wantDB)
			}
		})
	}
}

func TestLogger_RecordEventsCarryActor(t *testing.T) {
	store := &memStore{}
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Admin: "db"}, nil)

	req := testutil.NewAuthenticatedRequest("POST", "/society", testutil.AdminUser())
	req.RemoteAddr = "192.0.2.1:4000"
	logger.RecordUpdated(context.Background(), req, "society", "3", []string{"name", "city"})

	events := store.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != audit.EventRecordUpdated || e.Resource != "society" || e.ResourceID != "3" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.ActorID != "42" || e.ActorRole != "Admin" || e.SocietyID != "1" {
		t.Errorf("actor: got id=%q role=%q society=%q", e.ActorID, e.ActorRole, e.SocietyID)
	}
	if e.IP != "192.0.2.1" {
		t.Errorf("IP: got %q", e.IP)
	}
	if e.Details["fields_changed"] != "name,city" {
		t.Errorf("fields_changed: got %q", e.Details["fields_changed"])
	}
}

func TestLogger_PhoneIsPseudonymized(t *testing.T) {
	store := &memStore{}
	hasher := auditlog.NewPhoneHasher([]byte("0123456789abcdef0123456789abcdef"))
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"}, hasher)

	req := httptest.NewRequest("POST", "/auth/login/otp", nil)
	logger.OTPRequested(context.Background(), req, "9876543210", true, "")
	logger.OTPRateLimited(context.Background(), req, "9876543210", "phone")

	events := store.all()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	h := events[0].Details["phone_hash"]
	if h == "" || h == "9876543210" {
		t.Fatalf("phone_hash: got %q", h)
	}
	if events[1].Details["phone_hash"] != h {
		t.Error("the same phone should hash to the same value")
	}
	if events[1].Success {
		t.Error("rate-limited event should be a failure")
	}
}

func TestPhoneHasher(t *testing.T) {
	a := auditlog.NewPhoneHasher([]byte("key-a"))
	b := auditlog.NewPhoneHasher([]byte("key-b"))

	if a.Hash("") != "" {
		t.Error("empty phone should hash to empty")
	}
	if got := len(a.Hash("9876543210")); got != 32 {
		t.Errorf("digest length: got %d, want 32", got)
	}
	if a.Hash("9876543210") == b.Hash("9876543210") {
		t.Error("different keys should give different digests")
	}
	if a.Hash(" 9876543210 ") != a.Hash("9876543210") {
		t.Error("surrounding space should not matter")
	}
}
