// Package messaging holds the chat store: conversation list, active chat,
// and its message history for the signed-in user.
package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/models"
)

// ErrNotAuthenticated is returned when an operation needs a signed-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// State is a snapshot of the chat store. Messages belong to CurrentChatID.
type State struct {
	Chats         []models.Chat
	CurrentChatID string
	Messages      []models.Message
	Err           string
}

// Service is the messaging store. The current-user lookup is injected so the
// store follows whatever session the auth layer holds.
type Service struct {
	db      *database.Service
	current func() (models.User, bool)
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewService constructs an empty chat store.
func NewService(db *database.Service, current func() (models.User, bool), logger *slog.Logger) *Service {
	if current == nil {
		current = func() (models.User, bool) { return models.User{}, false }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:      db,
		current: current,
		logger:  logger,
		subs:    make(map[int]func(State)),
	}
}

// State returns the current snapshot. Slices are copies.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Subscribe registers fn for state-change notifications and returns an
// unsubscribe func.
func (s *Service) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// FetchChats loads the signed-in user's conversations into the store.
func (s *Service) FetchChats(ctx context.Context) ([]models.Chat, error) {
	user, ok := s.current()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	chats, err := s.db.GetUserChats(ctx, user.ID)
	if err != nil {
		s.logger.Error("fetch chats", "userId", user.ID, "error", err)
		s.update(func(st *State) { st.Err = "Failed to load chats" })
		return nil, err
	}

	s.update(func(st *State) {
		st.Chats = chats
		st.Err = ""
	})
	return chats, nil
}

// CreateChat opens a conversation between the signed-in user and the given
// peers, then refreshes the chat list.
func (s *Service) CreateChat(ctx context.Context, peerIDs ...string) (models.Chat, error) {
	user, ok := s.current()
	if !ok {
		return models.Chat{}, ErrNotAuthenticated
	}

	participants := append([]string{user.ID}, peerIDs...)
	chat, err := s.db.CreateChat(ctx, participants)
	if err != nil {
		return models.Chat{}, err
	}

	s.update(func(st *State) {
		st.Chats = append(st.Chats, chat)
	})
	return chat, nil
}

// OpenChat makes chatID the active conversation, loads its history oldest
// first, and marks the peer's messages as read.
func (s *Service) OpenChat(ctx context.Context, chatID string) ([]models.Message, error) {
	user, ok := s.current()
	if !ok {
		return nil, ErrNotAuthenticated
	}

	messages, err := s.db.GetChatMessages(ctx, chatID)
	if err != nil {
		s.logger.Error("fetch messages", "chatId", chatID, "error", err)
		s.update(func(st *State) { st.Err = "Failed to load messages" })
		return nil, err
	}

	if err := s.db.MarkMessagesAsRead(ctx, chatID, user.ID); err != nil {
		s.logger.Warn("mark messages read", "chatId", chatID, "error", err)
	}
	for i := range messages {
		if messages[i].SenderID != user.ID {
			messages[i].IsRead = true
		}
	}

	s.update(func(st *State) {
		st.CurrentChatID = chatID
		st.Messages = messages
		st.Err = ""
	})
	return messages, nil
}

// CloseChat clears the active conversation.
func (s *Service) CloseChat() {
	s.update(func(st *State) {
		st.CurrentChatID = ""
		st.Messages = nil
	})
}

// SendMessage appends a message authored by the signed-in user to the chat.
// When the chat is the active one, the local history picks it up too.
func (s *Service) SendMessage(ctx context.Context, chatID, content string, msgType models.MessageType) (models.Message, error) {
	user, ok := s.current()
	if !ok {
		return models.Message{}, ErrNotAuthenticated
	}

	message, err := s.db.CreateMessage(ctx, database.CreateMessageInput{
		ChatID:   chatID,
		SenderID: user.ID,
		Content:  content,
		Type:     msgType,
	})
	if err != nil {
		return models.Message{}, err
	}

	s.update(func(st *State) {
		if st.CurrentChatID == chatID {
			st.Messages = append(st.Messages, message)
		}
		for i := range st.Chats {
			if st.Chats[i].ID == chatID {
				cached := message
				st.Chats[i].LastMessage = &cached
				st.Chats[i].UpdatedAt = message.Timestamp
			}
		}
	})
	return message, nil
}

// MarkMessagesAsRead flips the read flag on the peer's messages in the chat.
func (s *Service) MarkMessagesAsRead(ctx context.Context, chatID string) error {
	user, ok := s.current()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := s.db.MarkMessagesAsRead(ctx, chatID, user.ID); err != nil {
		return err
	}

	s.update(func(st *State) {
		if st.CurrentChatID != chatID {
			return
		}
		for i := range st.Messages {
			if st.Messages[i].SenderID != user.ID {
				st.Messages[i].IsRead = true
			}
		}
	})
	return nil
}

// DeleteMessage removes a message and drops it from the local history.
func (s *Service) DeleteMessage(ctx context.Context, messageID string) error {
	if _, ok := s.current(); !ok {
		return ErrNotAuthenticated
	}

	if err := s.db.DeleteMessage(ctx, messageID); err != nil {
		return err
	}

	s.update(func(st *State) {
		remaining := st.Messages[:0:0]
		for _, m := range st.Messages {
			if m.ID != messageID {
				remaining = append(remaining, m)
			}
		}
		st.Messages = remaining
	})
	return nil
}

// BlockUser records a block by the signed-in user and drops conversations
// with the blocked user from the local chat list. A dropped chat that was
// active is closed too.
func (s *Service) BlockUser(ctx context.Context, blockedID string) error {
	user, ok := s.current()
	if !ok {
		return ErrNotAuthenticated
	}

	if err := s.db.BlockUser(ctx, user.ID, blockedID); err != nil {
		return err
	}

	s.update(func(st *State) {
		remaining := st.Chats[:0:0]
		for _, chat := range st.Chats {
			if hasParticipant(chat, blockedID) {
				if st.CurrentChatID == chat.ID {
					st.CurrentChatID = ""
					st.Messages = nil
				}
				continue
			}
			remaining = append(remaining, chat)
		}
		st.Chats = remaining
	})
	return nil
}

func hasParticipant(chat models.Chat, userID string) bool {
	for _, id := range chat.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Service) update(apply func(*State)) {
	s.mu.Lock()
	apply(&s.state)
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	snapshot := cloneState(s.state)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func cloneState(state State) State {
	if state.Chats != nil {
		state.Chats = append([]models.Chat(nil), state.Chats...)
	}
	if state.Messages != nil {
		state.Messages = append([]models.Message(nil), state.Messages...)
	}
	return state
}
