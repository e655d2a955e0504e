package handlers

import (
	"net/http"
	"strings"

	"github.com/nusaiba/backend/internal/logging"
)

// SearchHandler implements free-text search endpoints.
type SearchHandler struct {
	Users  UserStore
	Videos VideoSearcher
}

// SearchUsers handles GET /api/v1/users/search requests.
func (h SearchHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search unavailable"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	users, err := h.Users.SearchUsers(ctx, query)
	if err != nil {
		logger.Error("user search failed", "query", query, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"users": users})
}

// SearchVideos handles GET /api/v1/videos/search requests.
func (h SearchHandler) SearchVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Videos == nil {
		logger.Error("video search unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search unavailable"})
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}

	videos, err := h.Videos.SearchVideos(ctx, query)
	if err != nil {
		logger.Error("video search failed", "query", query, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": videos})
}
