package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/logging"
	"github.com/nusaiba/backend/internal/messaging"
	"github.com/nusaiba/backend/internal/models"
)

// MessageHandler implements chat and messaging endpoints. All operations act
// on behalf of the signed-in user held by the messaging store.
type MessageHandler struct {
	Messaging MessagingStore
}

type createChatRequest struct {
	Participants []string `json:"participants"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type markReadRequest struct {
	ChatID string `json:"chatId"`
}

type blockRequest struct {
	BlockedID string `json:"blockedId"`
}

// Chats handles GET and POST /api/v1/chats requests.
func (h MessageHandler) Chats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listChats(w, r)
	case http.MethodPost:
		h.createChat(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h MessageHandler) listChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	chats, err := h.Messaging.FetchChats(ctx)
	if err != nil {
		if errors.Is(err, messaging.ErrNotAuthenticated) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			return
		}
		logger.Error("chat list failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load chats"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"chats": chats})
}

func (h MessageHandler) createChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid chat payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Participants) == 0 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "participants are required"})
		return
	}

	chat, err := h.Messaging.CreateChat(ctx, req.Participants...)
	if err != nil {
		if errors.Is(err, messaging.ErrNotAuthenticated) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			return
		}
		logger.Error("chat create failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create chat"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, chat)
}

// Messages handles /api/v1/chats/messages requests: GET loads a chat's
// history and marks the peer's messages as read, POST sends a message,
// DELETE removes one.
func (h MessageHandler) Messages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMessages(w, r)
	case http.MethodPost:
		h.sendMessage(w, r)
	case http.MethodDelete:
		h.deleteMessage(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h MessageHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	chatID := strings.TrimSpace(r.URL.Query().Get("chatId"))
	if chatID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "chatId is required"})
		return
	}

	messages, err := h.Messaging.OpenChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, messaging.ErrNotAuthenticated) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			return
		}
		logger.Error("message list failed", "chatId", chatID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load messages"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"messages": messages})
}

func (h MessageHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid message payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.ChatID = strings.TrimSpace(req.ChatID)
	if req.ChatID == "" || strings.TrimSpace(req.Content) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "chatId and content are required"})
		return
	}

	message, err := h.Messaging.SendMessage(ctx, req.ChatID, req.Content, models.MessageType(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, messaging.ErrNotAuthenticated):
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
		case errors.Is(err, database.ErrChatNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "chat not found"})
		default:
			logger.Error("message send failed", "chatId", req.ChatID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, message)
}

func (h MessageHandler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	messageID := strings.TrimSpace(r.URL.Query().Get("id"))
	if messageID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}

	if err := h.Messaging.DeleteMessage(ctx, messageID); err != nil {
		switch {
		case errors.Is(err, messaging.ErrNotAuthenticated):
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
		case errors.Is(err, database.ErrMessageNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "message not found"})
		default:
			logger.Error("message delete failed", "messageId", messageID, "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to delete message"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MarkRead handles POST /api/v1/chats/read requests.
func (h MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid read payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.ChatID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "chatId is required"})
		return
	}

	if err := h.Messaging.MarkMessagesAsRead(ctx, req.ChatID); err != nil {
		if errors.Is(err, messaging.ErrNotAuthenticated) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			return
		}
		logger.Error("mark read failed", "chatId", req.ChatID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to mark messages read"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// Block handles POST /api/v1/users/block requests.
func (h MessageHandler) Block(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Messaging == nil {
		logger.Error("messaging store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "messaging services unavailable"})
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid block payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.BlockedID) == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "blockedId is required"})
		return
	}

	if err := h.Messaging.BlockUser(ctx, req.BlockedID); err != nil {
		if errors.Is(err, messaging.ErrNotAuthenticated) {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			return
		}
		logger.Error("block failed", "blockedId", req.BlockedID, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to block user"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
