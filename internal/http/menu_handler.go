package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sopissedoff/my-restaurant-app-online/internal/catalog"
	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

// MenuSource serves the in-memory menu snapshot; handlers never hit the
// catalog database directly.
type MenuSource interface {
	Current() catalog.Snapshot
}

type MenuHandler struct {
	menu MenuSource
}

func NewMenuHandler(menu MenuSource) *MenuHandler {
	return &MenuHandler{menu: menu}
}

func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	snapshot := h.menu.Current()
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "menu_unavailable", "menu is not loaded yet")
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		respondJSON(w, http.StatusOK, snapshot)
		return
	}

	filtered := make([]*domain.MenuItem, 0, len(snapshot))
	for _, item := range snapshot {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	respondJSON(w, http.StatusOK, filtered)
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	snapshot := h.menu.Current()
	if snapshot == nil {
		respondError(w, http.StatusServiceUnavailable, "menu_unavailable", "menu is not loaded yet")
		return
	}

	id := chi.URLParam(r, "id")
	for _, item := range snapshot {
		if item.ID == id {
			respondJSON(w, http.StatusOK, item)
			return
		}
	}

	respondError(w, http.StatusNotFound, "not_found", "menu item not found")
}
