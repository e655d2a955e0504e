package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/logging"
	"github.com/nusaiba/backend/internal/videos"
)

// VideoHandler implements the feed and upload endpoints.
type VideoHandler struct {
	Videos VideoService
}

type createVideoRequest struct {
	UserID       string   `json:"userId"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Duration     int      `json:"duration"`
	IsShort      bool     `json:"isShort"`
	Hashtags     []string `json:"hashtags"`

	// Raw content, base64 encoded. When present the video goes through the
	// background upload pipeline and starts in the processing state.
	FileName  string `json:"fileName"`
	Content   string `json:"content"`
	ThumbName string `json:"thumbName"`
	Thumbnail string `json:"thumbnail"`
}

type videoActionRequest struct {
	VideoID string `json:"videoId"`
}

// Create handles POST /api/v1/videos requests.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Videos == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.Title = strings.TrimSpace(req.Title)
	if req.UserID == "" || req.Title == "" {
		logger.Warn("video missing fields", "userId", req.UserID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId and title are required"})
		return
	}
	if req.URL == "" && req.Content == "" {
		logger.Warn("video missing source", "userId", req.UserID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "either url or content is required"})
		return
	}

	input := videos.UploadInput{
		Meta: database.CreateVideoInput{
			UserID:       req.UserID,
			Title:        req.Title,
			Description:  req.Description,
			URL:          req.URL,
			ThumbnailURL: req.ThumbnailURL,
			Duration:     req.Duration,
			IsShort:      req.IsShort,
			Hashtags:     req.Hashtags,
		},
		FileName:  req.FileName,
		ThumbName: req.ThumbName,
	}

	if req.Content != "" {
		content, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			logger.Warn("invalid video content encoding", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content must be base64 encoded"})
			return
		}
		input.Content = content
	}
	if req.Thumbnail != "" {
		thumb, err := base64.StdEncoding.DecodeString(req.Thumbnail)
		if err != nil {
			logger.Warn("invalid thumbnail encoding", "error", err)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "thumbnail must be base64 encoded"})
			return
		}
		input.Thumbnail = thumb
	}

	video, err := h.Videos.Upload(ctx, input)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			logger.Warn("video owner not found", "userId", req.UserID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("video create failed", "error", err, "userId", req.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create video"})
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, video)
}

// Feed handles GET /api/v1/videos/feed requests. Optional query parameters:
// userId, shorts (true/false), limit.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Videos == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	filters := database.VideoFilters{
		UserID: strings.TrimSpace(r.URL.Query().Get("userId")),
	}
	if raw := r.URL.Query().Get("shorts"); raw != "" {
		shorts, err := strconv.ParseBool(raw)
		if err != nil {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "shorts must be true or false"})
			return
		}
		filters.IsShort = &shorts
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		filters.Limit = limit
	}

	feed, err := h.Videos.FetchVideos(ctx, filters)
	if err != nil {
		logger.Error("feed fetch failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load feed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": feed})
}

// Like handles POST /api/v1/videos/like requests.
func (h VideoHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.counterAction(w, r, "like", func(ctx context.Context, id string) error {
		return h.Videos.LikeVideo(ctx, id)
	})
}

// Share handles POST /api/v1/videos/share requests.
func (h VideoHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.counterAction(w, r, "share", func(ctx context.Context, id string) error {
		return h.Videos.ShareVideo(ctx, id)
	})
}

// View handles POST /api/v1/videos/view requests.
func (h VideoHandler) View(w http.ResponseWriter, r *http.Request) {
	h.counterAction(w, r, "view", func(ctx context.Context, id string) error {
		return h.Videos.RecordView(ctx, id)
	})
}

func (h VideoHandler) counterAction(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, id string) error) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Videos == nil {
		logger.Error("video service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "video services unavailable"})
		return
	}

	var req videoActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid payload", "action", action, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.VideoID = strings.TrimSpace(req.VideoID)
	if req.VideoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videoId is required"})
		return
	}

	if err := apply(ctx, req.VideoID); err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			logger.Warn("video not found", "action", action, "videoId", req.VideoID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logger.Error("video action failed", "action", action, "videoId", req.VideoID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
