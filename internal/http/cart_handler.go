package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sopissedoff/my-restaurant-app-online/internal/cart"
	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, userID string, line domain.CartLine) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID string, index, quantity int) (*domain.Cart, error)
	RemoveLine(ctx context.Context, userID string, index int) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts CartService
	menu  MenuSource
}

func NewCartHandler(carts CartService, menu MenuSource) *CartHandler {
	return &CartHandler{carts: carts, menu: menu}
}

// optionChoice accepts either a bare string or an array of strings on the
// wire, so single- and multi-choice options share one request shape.
type optionChoice []string

func (c *optionChoice) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = optionChoice{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("option value must be a string or an array of strings")
	}
	*c = optionChoice(many)
	return nil
}

type AddLineRequestDTO struct {
	ItemID   string                  `json:"item_id"`
	Quantity int                     `json:"quantity"`
	Options  map[string]optionChoice `json:"options"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	snapshot := h.menu.Current()
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "menu_unavailable", "menu is not loaded yet")
		return
	}

	item := findItem(snapshot, req.ItemID)
	if item == nil {
		respondError(w, http.StatusBadRequest, "unknown_item", "item is not on the menu")
		return
	}

	picks := make(map[string][]string, len(req.Options))
	for groupType, choice := range req.Options {
		picks[groupType] = choice
	}
	selection, err := domain.ResolveSelection(*item, picks)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_options", err.Error())
		return
	}

	// Name and unit price are captured from the live menu; the line keeps
	// them even if the menu changes later.
	line := domain.CartLine{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  req.Quantity,
		Options:   selection,
		AddedAt:   time.Now(),
	}

	updated, err := h.carts.AddLine(r.Context(), userID, line)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, updated)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	resp, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	index, ok := lineIndex(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Quantity zero removes the line, so only the upper bound is checked.
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 0 and 99")
		return
	}

	updated, err := h.carts.UpdateQuantity(r.Context(), userID, index, req.Quantity)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	index, ok := lineIndex(w, r)
	if !ok {
		return
	}

	updated, err := h.carts.RemoveLine(r.Context(), userID, index)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		handleCartError(w, err)
		return
	}

	resp, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func lineIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	indexStr := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "invalid_index", "line index must be a non-negative integer")
		return 0, false
	}
	return index, true
}

func findItem(snapshot []*domain.MenuItem, id string) *domain.MenuItem {
	for _, item := range snapshot {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "not_found", "no cart line at that index")
	case errors.Is(err, cart.ErrCartSubmitting):
		respondError(w, http.StatusConflict, "checkout_in_progress", "cart is being checked out, try again shortly")
	default:
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "cart is temporarily unavailable")
	}
}
