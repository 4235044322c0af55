package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

func TestListItems(t *testing.T) {
	handler := NewMenuHandler(&menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	handler.ListItems(recorder, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var items []*domain.MenuItem
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&items))
	assert.Len(t, items, 2)
}

func TestListItems_CategoryFilter(t *testing.T) {
	handler := NewMenuHandler(&menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	handler.ListItems(recorder, httptest.NewRequest("GET", "/?category=drinks", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var items []*domain.MenuItem
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "horchata", items[0].ID)
}

func TestListItems_NotLoaded(t *testing.T) {
	handler := NewMenuHandler(&menuSourceMock{snapshot: nil})

	recorder := httptest.NewRecorder()
	handler.ListItems(recorder, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestGetItem(t *testing.T) {
	handler := NewMenuHandler(&menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/", nil), "id", "tacos-carnitas")

	handler.GetItem(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var item domain.MenuItem
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&item))
	assert.Equal(t, "Tacos de Carnitas", item.Name)
	require.Len(t, item.Options, 2)
}

func TestGetItem_NotFound(t *testing.T) {
	handler := NewMenuHandler(&menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := withURLParam(httptest.NewRequest("GET", "/", nil), "id", "sushi")

	handler.GetItem(recorder, request)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestIdentityMiddleware_HeaderWins(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = getUserIDFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-User-ID", "user-42")

	IdentityMiddleware(next).ServeHTTP(recorder, request)
	assert.Equal(t, "user-42", got)
	assert.Empty(t, recorder.Result().Cookies())
}

func TestIdentityMiddleware_MintsAnonCookie(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = getUserIDFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	IdentityMiddleware(next).ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))

	require.NotEmpty(t, got)
	assert.Contains(t, got, "anon-")

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, anonCookie, cookies[0].Name)
	assert.Equal(t, got, cookies[0].Value)
}

func TestIdentityMiddleware_ReusesCookie(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = getUserIDFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.AddCookie(&http.Cookie{Name: anonCookie, Value: "anon-abc"})

	IdentityMiddleware(next).ServeHTTP(recorder, request)
	assert.Equal(t, "anon-abc", got)
	assert.Empty(t, recorder.Result().Cookies())
}
