package screen

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/visitdesk/internal/app/gateway"
	"github.com/dalemusser/visitdesk/internal/app/system/appstate"
	"github.com/dalemusser/visitdesk/internal/app/system/flash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseQuery(t *testing.T) {
	cases := []struct {
		url  string
		want Query
	}{
		{"/visitor", Query{Page: 1}},
		{"/visitor?page=3&q=+asha+", Query{Page: 3, Search: "asha"}},
		{"/visitor?page=-2", Query{Page: 1}},
		{"/visitor?page=abc", Query{Page: 1}},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.url, nil)
		assert.Equal(t, tc.want, ParseQuery(r), tc.url)
	}
}

func TestQueryEncode(t *testing.T) {
	assert.Equal(t, "", Query{Page: 1}.Encode())
	assert.Equal(t, "page=2&q=green+park", Query{Page: 2, Search: "green park"}.Encode())
}

func TestFailed_ToastAndNoSwap(t *testing.T) {
	w := httptest.NewRecorder()
	Failed(w, "Phone already registered")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "none", w.Header().Get("HX-Reswap"))

	var payload map[string][]flash.Toast
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &payload))
	require.Len(t, payload[flash.TriggerEvent], 1)
	assert.Equal(t, flash.Error, payload[flash.TriggerEvent][0].Kind)
	assert.Equal(t, "Phone already registered", payload[flash.TriggerEvent][0].Message)
}

func TestCellLink(t *testing.T) {
	assert.Equal(t, "a&lt;b", string(CellLink("", "a<b")))
	assert.Contains(t, string(CellLink("https://x/img.png?a=1&b=2", "Photo")), `href="https://x/img.png?a=1&amp;b=2"`)
}

func TestReject_BusinessMessageVerbatim(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/society", nil)
	err := &gateway.Error{Kind: gateway.KindBusiness, Status: 409, Message: "Society name already exists", Op: "societies.create"}

	Reject(w, r, zap.NewNop(), "societies", "create", err)

	assert.Equal(t, "none", w.Header().Get("HX-Reswap"))
	assert.Contains(t, w.Header().Get("HX-Trigger"), "Society name already exists")
}

func TestReject_UnauthorizedEndsSession(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/society", nil)
	r.Header.Set("HX-Request", "true")

	Reject(w, r, zap.NewNop(), "societies", "create", &gateway.Error{Kind: gateway.KindUnauthorized, Status: 401})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/auth/logout/expired", w.Header().Get("HX-Redirect"))
	assert.Empty(t, w.Header().Get("HX-Trigger"))
}

func TestExpired_PlainRequestRedirects(t *testing.T) {
	w := httptest.NewRecorder()
	Expired(w, httptest.NewRequest(http.MethodGet, "/visitor", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/auth/logout/expired", w.Header().Get("Location"))
}

func TestSession_MissingStateIsServerError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/society/table", nil)
	r.Header.Set("HX-Request", "true")

	st, ok := Session(w, r, zap.NewNop())

	assert.False(t, ok)
	assert.Nil(t, st)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSession_Present(t *testing.T) {
	want := appstate.New("k")
	r := httptest.NewRequest(http.MethodGet, "/society", nil)
	r = r.WithContext(appstate.WithState(r.Context(), want))

	st, ok := Session(httptest.NewRecorder(), r, zap.NewNop())
	require.True(t, ok)
	assert.Same(t, want, st)
}
