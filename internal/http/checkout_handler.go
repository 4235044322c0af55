package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sopissedoff/my-restaurant-app-online/internal/checkout"
	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
	"github.com/sopissedoff/my-restaurant-app-online/internal/orders"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*domain.Order, error)
}

type OrdersReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
}

func NewCheckoutHandler(checkout CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())

	order, err := h.checkout.Checkout(r.Context(), userID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
	case errors.Is(err, checkout.ErrIdentityUnavailable):
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout is already in progress")
	case errors.Is(err, checkout.ErrPersistence):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order could not be saved, your cart is unchanged")
	default:
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "checkout is temporarily unavailable")
	}
}

type OrdersHandler struct {
	orders OrdersReader
}

func NewOrdersHandler(reader OrdersReader) *OrdersHandler {
	return &OrdersHandler{orders: reader}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	list, err := h.orders.ListOrdersByUserID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "orders are temporarily unavailable")
		return
	}
	if list == nil {
		list = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "orders are temporarily unavailable")
		return
	}

	// Another user's order is indistinguishable from a missing one.
	if order.UserID != userID {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}
