package database

import (
	"context"
	"sort"

	"github.com/nusaiba/backend/internal/models"
)

// CreateMessageInput carries the fields of a new chat message.
type CreateMessageInput struct {
	ChatID   string
	SenderID string
	Content  string
	Type     models.MessageType
}

// CreateMessage stores a message in an existing chat and refreshes the
// chat's last-message cache.
func (s *Service) CreateMessage(ctx context.Context, input CreateMessageInput) (models.Message, error) {
	chats := getCollection[models.Chat](ctx, s, keyChats)
	chatIndex := -1
	for i := range chats {
		if chats[i].ID == input.ChatID {
			chatIndex = i
			break
		}
	}
	if chatIndex == -1 {
		return models.Message{}, ErrChatNotFound
	}

	msgType := input.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	message := models.Message{
		ID:        s.newID(),
		ChatID:    input.ChatID,
		SenderID:  input.SenderID,
		Content:   input.Content,
		Type:      msgType,
		Timestamp: s.now(),
	}

	messages := getCollection[models.Message](ctx, s, keyMessages)
	messages = append(messages, message)
	setCollection(ctx, s, keyMessages, messages)

	cached := message
	chats[chatIndex].LastMessage = &cached
	chats[chatIndex].UpdatedAt = message.Timestamp
	setCollection(ctx, s, keyChats, chats)

	return message, nil
}

// GetChatMessages returns a chat's messages, oldest first.
func (s *Service) GetChatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var result []models.Message
	for _, m := range getCollection[models.Message](ctx, s, keyMessages) {
		if m.ChatID == chatID {
			result = append(result, m)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// MarkMessagesAsRead flips the read flag on every unread message in the chat
// that the reader did not author. Applying it twice is a no-op the second
// time; nothing is written when no message changed.
func (s *Service) MarkMessagesAsRead(ctx context.Context, chatID, readerID string) error {
	messages := getCollection[models.Message](ctx, s, keyMessages)

	updated := false
	for i := range messages {
		m := &messages[i]
		if m.ChatID == chatID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			updated = true
		}
	}

	if updated {
		setCollection(ctx, s, keyMessages, messages)
	}
	return nil
}

// DeleteMessage removes a message. If it was a chat's cached last message,
// the cache is recomputed from the remaining messages.
func (s *Service) DeleteMessage(ctx context.Context, messageID string) error {
	messages := getCollection[models.Message](ctx, s, keyMessages)

	var deleted *models.Message
	remaining := messages[:0:0]
	for _, m := range messages {
		if m.ID == messageID {
			m := m
			deleted = &m
			continue
		}
		remaining = append(remaining, m)
	}
	if deleted == nil {
		return ErrMessageNotFound
	}

	setCollection(ctx, s, keyMessages, remaining)

	chats := getCollection[models.Chat](ctx, s, keyChats)
	for i := range chats {
		if chats[i].ID != deleted.ChatID {
			continue
		}
		if chats[i].LastMessage == nil || chats[i].LastMessage.ID != messageID {
			break
		}
		chats[i].LastMessage = latestChatMessage(remaining, deleted.ChatID)
		setCollection(ctx, s, keyChats, chats)
		break
	}

	return nil
}

func latestChatMessage(messages []models.Message, chatID string) *models.Message {
	var latest *models.Message
	for i := range messages {
		m := &messages[i]
		if m.ChatID != chatID {
			continue
		}
		if latest == nil || m.Timestamp.After(latest.Timestamp) {
			latest = m
		}
	}
	if latest == nil {
		return nil
	}
	cached := *latest
	return &cached
}

// CreateChat stores a chat with the given participants.
func (s *Service) CreateChat(ctx context.Context, participantIDs []string) (models.Chat, error) {
	now := s.now()
	chat := models.Chat{
		ID:           s.newID(),
		Participants: participantIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	chats := getCollection[models.Chat](ctx, s, keyChats)
	chats = append(chats, chat)
	setCollection(ctx, s, keyChats, chats)

	return chat, nil
}

// GetUserChats returns every chat the user participates in.
func (s *Service) GetUserChats(ctx context.Context, userID string) ([]models.Chat, error) {
	var result []models.Chat
	for _, c := range getCollection[models.Chat](ctx, s, keyChats) {
		for _, participant := range c.Participants {
			if participant == userID {
				result = append(result, c)
				break
			}
		}
	}
	return result, nil
}
