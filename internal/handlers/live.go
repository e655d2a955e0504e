package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/logging"
)

// LiveHandler implements broadcast endpoints.
type LiveHandler struct {
	Live LiveService
}

type startStreamRequest struct {
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StreamURL   string `json:"streamUrl"`
}

type streamActionRequest struct {
	StreamID string `json:"streamId"`
	Viewers  int    `json:"viewers"`
}

// Streams handles GET and POST /api/v1/live requests.
func (h LiveHandler) Streams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listActive(w, r)
	case http.MethodPost:
		h.start(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h LiveHandler) listActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Live == nil {
		logger.Error("live service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "live services unavailable"})
		return
	}

	streams, err := h.Live.Active(ctx)
	if err != nil {
		logger.Error("active stream list failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load streams"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"streams": streams})
}

func (h LiveHandler) start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Live == nil {
		logger.Error("live service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "live services unavailable"})
		return
	}

	var req startStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid stream payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Title = strings.TrimSpace(req.Title)
	if req.UserID == "" || req.Title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId and title are required"})
		return
	}

	stream, err := h.Live.Start(ctx, database.CreateLiveStreamInput{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		StreamURL:   req.StreamURL,
	})
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			logger.Warn("stream owner not found", "userId", req.UserID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("stream start failed", "error", err, "userId", req.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to start stream"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, stream)
}

// End handles POST /api/v1/live/end requests.
func (h LiveHandler) End(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Live == nil {
		logger.Error("live service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "live services unavailable"})
		return
	}

	var req streamActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid stream payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.StreamID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "streamId is required"})
		return
	}

	if err := h.Live.End(ctx, req.StreamID); err != nil {
		if errors.Is(err, database.ErrStreamNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "stream not found"})
			return
		}
		logger.Error("stream end failed", "streamId", req.StreamID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to end stream"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ended"})
}

// Viewers handles POST /api/v1/live/viewers requests.
func (h LiveHandler) Viewers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Live == nil {
		logger.Error("live service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "live services unavailable"})
		return
	}

	var req streamActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid stream payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.StreamID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "streamId is required"})
		return
	}

	if err := h.Live.SetViewers(ctx, req.StreamID, req.Viewers); err != nil {
		if errors.Is(err, database.ErrStreamNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "stream not found"})
			return
		}
		logger.Error("viewer update failed", "streamId", req.StreamID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update viewers"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
