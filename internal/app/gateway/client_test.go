package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded is what the fake backend saw.
type recorded struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Header http.Header
	Body   []byte
}

type fakeBackend struct {
	mu   sync.Mutex
	reqs []recorded
	srv  *httptest.Server
}

func newFakeBackend(t *testing.T, h http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		fb.mu.Lock()
		fb.reqs = append(fb.reqs, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Header: r.Header.Clone(),
			Body:   body,
		})
		fb.mu.Unlock()
		h(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) last(t *testing.T) recorded {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	require.NotEmpty(t, fb.reqs, "backend saw no requests")
	return fb.reqs[len(fb.reqs)-1]
}

func newClient(t *testing.T, fb *fakeBackend) *gateway.Client {
	t.Helper()
	c, err := gateway.New(gateway.Config{BaseURL: fb.srv.URL + "/api"})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := gateway.New(gateway.Config{})
	assert.Error(t, err)

	_, err = gateway.New(gateway.Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestListSocieties_SendsQueryAndBearer(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "ok",
			"data": []map[string]any{
				{"id": 1, "name": "Green Park", "address": "1 Main Street", "city": "Pune", "state": "MH", "zip": "41100", "phone": "9999999999"},
			},
			"pagination": map[string]any{"total": 11, "page": 2, "limit": 10, "totalPages": 2},
		})
	})
	c := newClient(t, fb).WithToken("tok-123")

	page, err := c.ListSocieties(context.Background(), gateway.ListParams{Page: 2, Limit: 10, Search: "green"})
	require.NoError(t, err)

	req := fb.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/societies", req.Path)
	assert.Contains(t, req.Query, "page=2")
	assert.Contains(t, req.Query, "limit=10")
	assert.Contains(t, req.Query, "searchTerm=green")
	assert.Equal(t, "Bearer tok-123", req.Auth)
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, models.ID("1"), page.Items[0].ID)
	assert.Equal(t, models.Pagination{Total: 11, Page: 2, Limit: 10, TotalPages: 2}, page.Pagination)
}

func TestAuthEndpoints_NeverCarryBearer(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP sent"})
	})
	c := newClient(t, fb).WithToken("tok-123")

	require.NoError(t, c.RequestOTP(context.Background(), "9999999999"))

	req := fb.last(t)
	assert.Equal(t, "/api/auth/request-otp", req.Path)
	assert.Empty(t, req.Auth)
	assert.JSONEq(t, `{"phone":"9999999999"}`, string(req.Body))
}

func TestVerifyOTP_DecodesToken(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   7,
		"role": "Department",
		"exp":  time.Now().Add(48 * time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"token": signed})
	})
	c := newClient(t, fb)

	sess, err := c.VerifyOTP(context.Background(), "9999999999", "123456")
	require.NoError(t, err)

	assert.Equal(t, signed, sess.Token)
	assert.Equal(t, models.ID("7"), sess.UserID)
	assert.Equal(t, models.RoleDepartment, sess.Role)
	assert.False(t, sess.ExpiresAt.IsZero())
	assert.JSONEq(t, `{"phone":"9999999999","otp":"123456"}`, string(fb.last(t).Body))
}

func TestVerifyOTP_WrongCodeIsBusinessError(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Invalid OTP"})
	})
	c := newClient(t, fb)

	_, err := c.VerifyOTP(context.Background(), "9999999999", "000000")
	require.Error(t, err)
	assert.Equal(t, gateway.KindBusiness, gateway.KindOf(err))
	assert.Equal(t, "Invalid OTP", gateway.UserMessage(err))
}

func TestDecodeSessionToken_Garbage(t *testing.T) {
	_, err := gateway.DecodeSessionToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, gateway.KindDecode, gateway.KindOf(err))
}

func TestMe_UnauthorizedIsTagged(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "jwt expired"})
	})
	c := newClient(t, fb).WithToken("old")

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsUnauthorized(err))
	assert.Equal(t, "/api/users/user/me", fb.last(t).Path)
}

func TestMe_UnwrapsDataEnvelope(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "u1", "name": "Asha", "phone": "9999999999", "role": "Admin", "currentSocietyId": 4},
		})
	})
	c := newClient(t, fb).WithToken("tok")

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, models.ID("4"), u.CurrentSocietyID)
}

func TestDelete_NonexistentIsNotFound(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Society not found"})
	})
	c := newClient(t, fb).WithToken("tok")

	err := c.DeleteSociety(context.Background(), "999")
	require.Error(t, err)
	assert.Equal(t, gateway.KindNotFound, gateway.KindOf(err))
	assert.Equal(t, "Society not found", gateway.UserMessage(err))

	req := fb.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/api/societies/999", req.Path)
}

func TestSuccessFalseOn200IsBusiness(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Apartment name already exists"})
	})
	c := newClient(t, fb).WithToken("tok")

	_, err := c.CreateApartment(context.Background(), models.ApartmentInput{Name: "A-101", SocietyID: "1", UserID: "2"})
	require.Error(t, err)
	assert.Equal(t, gateway.KindBusiness, gateway.KindOf(err))
	assert.Equal(t, "Apartment name already exists", gateway.UserMessage(err))
}

func TestServerError(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>boom</html>", http.StatusInternalServerError)
	})
	c := newClient(t, fb).WithToken("tok")

	_, err := c.ListUsers(context.Background(), gateway.ListParams{Page: 1, Limit: 10})
	require.Error(t, err)
	assert.Equal(t, gateway.KindServer, gateway.KindOf(err))
	assert.Equal(t, "Something went wrong. Please try again.", gateway.UserMessage(err))
}

func TestTransportError(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	c := newClient(t, fb)
	fb.srv.Close()

	_, err := c.ListApartments(context.Background(), gateway.ListParams{Page: 1})
	require.Error(t, err)
	assert.Equal(t, gateway.KindTransport, gateway.KindOf(err))

	var ge *gateway.Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "apartments.list", ge.Op)
}

func TestTimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c, err := gateway.New(gateway.Config{BaseURL: fb.srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.ListVisitors(context.Background(), gateway.ListParams{Page: 1})
	require.Error(t, err)
	assert.Equal(t, gateway.KindTransport, gateway.KindOf(err))
}

func TestFilterUsers_BareArray(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "u1", "name": "Dept One", "phone": "1111111111", "role": "Department"},
			{"id": "u2", "name": "Dept Two", "phone": "2222222222", "role": "Department"},
		})
	})
	c := newClient(t, fb).WithToken("tok")

	users, err := c.FilterUsers(context.Background(), models.UserFilter{Role: models.RoleDepartment, SocietyID: "3"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	req := fb.last(t)
	assert.Equal(t, "/api/users/filter", req.Path)
	assert.JSONEq(t, `{"role":"Department","societyId":3}`, string(req.Body))
}
