package loginstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	loginstore "github.com/dalemusser/visitdesk/internal/app/store/logins"
	"github.com/dalemusser/visitdesk/internal/app/system/auditlog"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/visitdesk/internal/testutil"
)

func newStore(t *testing.T) (*loginstore.Store, *auditlog.PhoneHasher) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	hasher := auditlog.NewPhoneHasher([]byte("test-key"))
	return loginstore.New(db, hasher), hasher
}

func TestStore_Create_WithExplicitTimestamp(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	customTime := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	if err := store.Create(ctx, models.LoginRecord{UserID: "5", CreatedAt: customTime, Provider: loginstore.ProviderOTP}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Recent(ctx, "5", 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 || !got[0].CreatedAt.Equal(customTime) {
		t.Errorf("CreatedAt: got %+v, want %v", got, customTime)
	}
}

func TestStore_CreateFrom_HashesPhone(t *testing.T) {
	store, hasher := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := httptest.NewRequest("POST", "/auth/login/verify", nil)
	r.RemoteAddr = "192.0.2.8:3000"
	r.Header.Set("User-Agent", "test-agent")

	if err := store.CreateFrom(ctx, r, "9", models.RoleSecurity, "9876543210"); err != nil {
		t.Fatalf("CreateFrom failed: %v", err)
	}

	got, err := store.Recent(ctx, "9", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	if rec.PhoneHash != hasher.Hash("9876543210") {
		t.Errorf("PhoneHash: got %q", rec.PhoneHash)
	}
	if rec.IP != "192.0.2.8" || rec.UserAgent != "test-agent" {
		t.Errorf("client: got ip=%q ua=%q", rec.IP, rec.UserAgent)
	}
	if rec.Role != "Security" || rec.Provider != loginstore.ProviderOTP {
		t.Errorf("role/provider: got %q/%q", rec.Role, rec.Provider)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Recent_NewestFirst(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		rec := models.LoginRecord{UserID: "3", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Create(ctx, rec); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	got, err := store.Recent(ctx, "3", 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Error("expected newest first")
	}
}
