package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sopissedoff/my-restaurant-app-online/internal/cart"
	"github.com/sopissedoff/my-restaurant-app-online/internal/catalog"
	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

type cartServiceMock struct {
	cart     *domain.Cart
	err      error
	gotLine  *domain.CartLine
	gotIndex int
	gotQty   int
}

func (m *cartServiceMock) GetCart(context.Context, string) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *cartServiceMock) AddLine(_ context.Context, _ string, line domain.CartLine) (*domain.Cart, error) {
	m.gotLine = &line
	if m.err != nil {
		return nil, m.err
	}
	next := m.cart.AddLine(line)
	m.cart = &next
	return m.cart, nil
}

func (m *cartServiceMock) UpdateQuantity(_ context.Context, _ string, index, quantity int) (*domain.Cart, error) {
	m.gotIndex, m.gotQty = index, quantity
	return m.cart, m.err
}

func (m *cartServiceMock) RemoveLine(_ context.Context, _ string, index int) (*domain.Cart, error) {
	m.gotIndex = index
	return m.cart, m.err
}

func (m *cartServiceMock) ClearCart(context.Context, string) error {
	return m.err
}

type menuSourceMock struct {
	snapshot catalog.Snapshot
}

func (m *menuSourceMock) Current() catalog.Snapshot { return m.snapshot }

func testMenu() catalog.Snapshot {
	return catalog.Snapshot{
		{
			ID:       "tacos-carnitas",
			Name:     "Tacos de Carnitas",
			Price:    9.50,
			Category: "tacos",
			Options: []domain.OptionGroup{
				{
					Type:    "salsa",
					Name:    "Salsa",
					Mode:    domain.SelectSingle,
					Choices: []string{"verde", "roja"},
					Default: domain.OptionValue{Mode: domain.SelectSingle, One: "verde"},
				},
				{
					Type:    "toppings",
					Name:    "Toppings",
					Mode:    domain.SelectMulti,
					Choices: []string{"onion", "cilantro", "lime"},
					Default: domain.OptionValue{Mode: domain.SelectMulti, Many: []string{"onion", "cilantro"}},
				},
			},
		},
		{
			ID:       "horchata",
			Name:     "Horchata",
			Price:    3.75,
			Category: "drinks",
		},
	}
}

func withUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAddLine_StringOptionResolved(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	body := `{"item_id":"tacos-carnitas","quantity":2,"options":{"salsa":"roja"}}`
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "user-1")

	handler.AddLine(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, svc.gotLine)
	assert.Equal(t, "tacos-carnitas", svc.gotLine.ItemID)
	assert.Equal(t, 9.50, svc.gotLine.UnitPrice)
	assert.Equal(t, 2, svc.gotLine.Quantity)
	assert.Equal(t, "roja", svc.gotLine.Options["salsa"].One)
	// Untouched groups keep their defaults.
	assert.ElementsMatch(t, []string{"onion", "cilantro"}, svc.gotLine.Options["toppings"].Many)
}

func TestAddLine_ArrayOptionResolved(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	body := `{"item_id":"tacos-carnitas","quantity":1,"options":{"toppings":["lime"]}}`
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "user-1")

	handler.AddLine(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.NotNil(t, svc.gotLine)
	assert.ElementsMatch(t, []string{"lime"}, svc.gotLine.Options["toppings"].Many)
	assert.Equal(t, "verde", svc.gotLine.Options["salsa"].One)
}

func TestAddLine_UnknownChoiceRejected(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	body := `{"item_id":"tacos-carnitas","quantity":1,"options":{"salsa":"habanero"}}`
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "user-1")

	handler.AddLine(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "invalid_options", resp.Code)
	assert.Nil(t, svc.gotLine)
}

func TestAddLine_UnknownItem(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	body := `{"item_id":"sushi","quantity":1}`
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "user-1")

	handler.AddLine(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "unknown_item", resp.Code)
}

func TestAddLine_QuantityBounds(t *testing.T) {
	for _, quantity := range []int{0, -1, 100} {
		svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
		handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

		body, _ := json.Marshal(map[string]interface{}{"item_id": "horchata", "quantity": quantity})
		recorder := httptest.NewRecorder()
		request := withUser(httptest.NewRequest("POST", "/", bytes.NewReader(body)), "user-1")

		handler.AddLine(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "quantity %d", quantity)
	}
}

func TestAddLine_MenuNotLoaded(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: nil})

	body := `{"item_id":"horchata","quantity":1}`
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "user-1")

	handler.AddLine(recorder, request)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestAddLine_Unauthorized(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{}`))

	handler.AddLine(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAddLine_SubmittingConflict(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}, err: cart.ErrCartSubmitting}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	body := `{"item_id":"horchata","quantity":1}`
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/", bytes.NewBufferString(body)), "user-1")

	handler.AddLine(recorder, request)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestUpdateQuantity_PassesIndexAndQuantity(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":5}`))
	request = withUser(withURLParam(request, "index", "1"), "user-1")

	handler.UpdateQuantity(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, svc.gotIndex)
	assert.Equal(t, 5, svc.gotQty)
}

func TestUpdateQuantity_ZeroAllowed(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":0}`))
	request = withUser(withURLParam(request, "index", "0"), "user-1")

	handler.UpdateQuantity(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 0, svc.gotQty)
}

func TestUpdateQuantity_BadIndex(t *testing.T) {
	svc := &cartServiceMock{cart: &domain.Cart{UserID: "user-1"}}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/", bytes.NewBufferString(`{"quantity":2}`))
	request = withUser(withURLParam(request, "index", "abc"), "user-1")

	handler.UpdateQuantity(recorder, request)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRemoveLine_IndexOutOfRange(t *testing.T) {
	svc := &cartServiceMock{err: cart.ErrLineNotFound}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/", nil)
	request = withUser(withURLParam(request, "index", "7"), "user-1")

	handler.RemoveLine(recorder, request)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetCart_ServiceError(t *testing.T) {
	svc := &cartServiceMock{err: errors.New("mongo down")}
	handler := NewCartHandler(svc, &menuSourceMock{snapshot: testMenu()})

	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("GET", "/", nil), "user-1")

	handler.GetCart(recorder, request)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestOptionChoice_Unmarshal(t *testing.T) {
	var dto AddLineRequestDTO
	body := `{"item_id":"x","quantity":1,"options":{"salsa":"roja","toppings":["lime","onion"]}}`
	require.NoError(t, json.Unmarshal([]byte(body), &dto))
	assert.Equal(t, optionChoice{"roja"}, dto.Options["salsa"])
	assert.Equal(t, optionChoice{"lime", "onion"}, dto.Options["toppings"])

	var bad AddLineRequestDTO
	require.Error(t, json.Unmarshal([]byte(`{"options":{"salsa":7}}`), &bad))
}
