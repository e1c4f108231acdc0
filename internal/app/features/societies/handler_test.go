package societies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/formdialog"
	"github.com/dalemusser/visitdesk/internal/app/system/screen"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/dalemusser/visitdesk/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, be *testutil.Backend) *Handler {
	t.Helper()
	return NewHandler(be.Client(t), nil, screen.Config{}, zap.NewNop())
}

func postForm(target string, vals url.Values, user testutil.TestUser) (*http.Request, *appstate.State) {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = testutil.HTMX(testutil.WithUser(r, user))
	return testutil.WithState(r)
}

// serve runs fn, tolerating a panic from template rendering when no
// engine is booted. Everything asserted here happens before the render.
func serve(fn http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() { _ = recover() }()
	fn(w, r)
}

func validSociety() url.Values {
	return url.Values{
		"name":    {"Green Park"},
		"address": {"12 MG Road"},
		"city":    {"Pune"},
		"state":   {"MH"},
		"zip":     {"411001"},
		"phone":   {"9999999999"},
		"admins":  {"7"},
	}
}

func listBody(rows ...models.Society) map[string]any {
	return map[string]any{
		"success":    true,
		"data":       rows,
		"pagination": models.Pagination{Total: len(rows), Page: 1, Limit: 10, TotalPages: 1},
	}
}

func TestSocietyInput_PartialCarriesOnlyChanged(t *testing.T) {
	v := formdialog.Values{"name": {"Green Park"}, "city": {"Mumbai"}, "admins": {"1", "", "2"}}

	in := societyInput(v, []string{"city"})
	if in.City != "Mumbai" || in.Name != "" || in.Admins != nil {
		t.Errorf("partial input = %+v", in)
	}

	full := societyInput(v, nil)
	if full.Name != "Green Park" || len(full.Admins) != 2 {
		t.Errorf("full input = %+v", full)
	}
}

func TestSocietyValues_AdminsAsStrings(t *testing.T) {
	v := societyValues(models.Society{Name: "A", Admins: []models.ID{"3", "9"}})
	if got := v.All("admins"); len(got) != 2 || got[1] != "9" {
		t.Errorf("admins = %v", got)
	}
}

func TestHandleCreate_AdminIsForbidden(t *testing.T) {
	be := testutil.NewBackend(t)
	h := newHandler(t, be)

	r, _ := postForm("/society", validSociety(), testutil.AdminUser())
	w := testutil.NewRecorder()
	h.HandleCreate(w, r)

	w.AssertStatus(t, http.StatusForbidden)
	if n := len(be.Requests()); n != 0 {
		t.Errorf("backend saw %d calls, want 0", n)
	}
}

func TestHandleCreate_BackendRejectionShownVerbatim(t *testing.T) {
	be := testutil.NewBackend(t)
	be.JSON(http.MethodPost, "/societies/create-society", http.StatusConflict,
		map[string]any{"success": false, "message": "Society name already exists"})
	h := newHandler(t, be)

	r, st := postForm("/society", validSociety(), testutil.SuperAdminUser())
	w := testutil.NewRecorder()
	h.HandleCreate(w, r)

	w.AssertStatus(t, http.StatusOK)
	if got := w.Header().Get("HX-Reswap"); got != "none" {
		t.Errorf("HX-Reswap = %q, want none", got)
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), "Society name already exists") {
		t.Errorf("HX-Trigger = %q", w.Header().Get("HX-Trigger"))
	}
	if be.Count(http.MethodGet, "/societies") != 0 {
		t.Error("a failed create must not re-fetch")
	}
	if st.Societies.Len() != 0 {
		t.Error("collection should be untouched")
	}
}

func TestHandleCreate_InvalidNeverReachesBackend(t *testing.T) {
	be := testutil.NewBackend(t)
	h := newHandler(t, be)

	vals := validSociety()
	vals.Set("phone", "12ab")
	r, _ := postForm("/society", vals, testutil.SuperAdminUser())
	serve(h.HandleCreate, httptest.NewRecorder(), r)

	if be.Count(http.MethodPost, "/societies/create-society") != 0 {
		t.Error("invalid form must not call the backend")
	}
}

func TestHandleUpdate_SendsOnlyChangedFields(t *testing.T) {
	be := testutil.NewBackend(t)
	existing := models.Society{ID: "3", Name: "Green Park", Address: "12 MG Road", City: "Pune",
		State: "MH", Zip: "411001", Phone: "9999999999", Admins: []models.ID{"7"}}
	be.JSON(http.MethodGet, "/societies", http.StatusOK, listBody(existing))
	be.JSON(http.MethodPut, "/societies/3", http.StatusOK, map[string]any{"success": true, "data": existing})
	h := newHandler(t, be)

	vals := validSociety()
	vals.Set("city", "Mumbai")
	r, st := postForm("/society/3", vals, testutil.SuperAdminUser())
	r = testutil.WithChiURLParam(r, "id", "3")

	ctrl := h.controller(st, be.Client(t))
	if err := ctrl.Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	serve(h.HandleUpdate, httptest.NewRecorder(), r)

	var put *testutil.RecordedRequest
	for _, req := range be.Requests() {
		if req.Method == http.MethodPut {
			put = &req
		}
	}
	if put == nil {
		t.Fatal("no PUT reached the backend")
	}
	var body map[string]any
	if err := json.Unmarshal(put.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 1 || body["city"] != "Mumbai" {
		t.Errorf("PUT body = %v, want only city", body)
	}
	if got := put.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestHandleDelete_FailureKeepsRows(t *testing.T) {
	be := testutil.NewBackend(t)
	be.JSON(http.MethodGet, "/societies", http.StatusOK, listBody(models.Society{ID: "1"}, models.Society{ID: "2"}))
	be.JSON(http.MethodDelete, "/societies/1", http.StatusBadRequest,
		map[string]any{"success": false, "message": "Society still has departments"})
	h := newHandler(t, be)

	r, st := postForm("/society/1/delete", nil, testutil.SuperAdminUser())
	r = testutil.WithChiURLParam(r, "id", "1")
	if err := h.controller(st, be.Client(t)).Mount(context.Background()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	gets := be.Count(http.MethodGet, "/societies")

	w := testutil.NewRecorder()
	h.HandleDelete(w, r)

	if !strings.Contains(w.Header().Get("HX-Trigger"), "Society still has departments") {
		t.Errorf("HX-Trigger = %q", w.Header().Get("HX-Trigger"))
	}
	if st.Societies.Len() != 2 {
		t.Errorf("rows = %d, want 2", st.Societies.Len())
	}
	if be.Count(http.MethodGet, "/societies") != gets {
		t.Error("a failed delete must not re-fetch")
	}
}

func TestHandleDelete_ManagerIsForbidden(t *testing.T) {
	be := testutil.NewBackend(t)
	h := newHandler(t, be)

	r, _ := postForm("/society/1/delete", nil, testutil.ManagerUser())
	r = testutil.WithChiURLParam(r, "id", "1")
	w := testutil.NewRecorder()
	h.HandleDelete(w, r)

	w.AssertStatus(t, http.StatusForbidden)
	if be.Count(http.MethodDelete, "/societies/1") != 0 {
		t.Error("backend should not be called")
	}
}
