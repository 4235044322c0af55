package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/sopissedoff/my-restaurant-app-online/internal/rewards"
)

type RewardsService interface {
	Progress(ctx context.Context, userID string) (*rewards.Progress, error)
	ProgressFor(points int) *rewards.Progress
}

// PointsFeed delivers balance changes for one user until unsubscribed.
type PointsFeed interface {
	Subscribe(userID string) (<-chan int, func())
}

type RewardsHandler struct {
	rewards RewardsService
	feed    PointsFeed
}

func NewRewardsHandler(service RewardsService, feed PointsFeed) *RewardsHandler {
	return &RewardsHandler{rewards: service, feed: feed}
}

func (h *RewardsHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	progress, err := h.rewards.Progress(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "rewards are temporarily unavailable")
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// StreamProgress pushes rewards progress over SSE. The current standing is
// sent immediately, then one event per balance change until the client
// disconnects.
func (h *RewardsHandler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming is not supported")
		return
	}

	progress, err := h.rewards.Progress(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "rewards are temporarily unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := h.feed.Subscribe(userID)
	defer unsubscribe()

	writeProgressEvent(w, progress)
	flusher.Flush()

	for {
		select {
		case points, open := <-ch:
			if !open {
				return
			}
			writeProgressEvent(w, h.rewards.ProgressFor(points))
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeProgressEvent(w http.ResponseWriter, progress *rewards.Progress) {
	data, err := json.Marshal(progress)
	if err != nil {
		log.Printf("failed to encode progress event: %v", err)
		return
	}
	fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
}
