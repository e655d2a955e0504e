package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/nusaiba/backend/internal/database"
	"github.com/nusaiba/backend/internal/kvstore"
	"github.com/nusaiba/backend/internal/models"
)

type chatFixture struct {
	svc   *Service
	db    *database.Service
	alice models.User
	bob   models.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	ctx := context.Background()
	db := database.New(kvstore.NewMemory(), nil, nil)

	alice, err := db.CreateUser(ctx, database.CreateUserInput{Email: "alice@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed alice: %v", err)
	}
	bob, err := db.CreateUser(ctx, database.CreateUserInput{Email: "bob@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed bob: %v", err)
	}

	svc := NewService(db, func() (models.User, bool) { return alice, true }, nil)
	return &chatFixture{svc: svc, db: db, alice: alice, bob: bob}
}

func TestOperationsRequireSession(t *testing.T) {
	db := database.New(kvstore.NewMemory(), nil, nil)
	svc := NewService(db, nil, nil)
	ctx := context.Background()

	if _, err := svc.FetchChats(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("FetchChats: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.CreateChat(ctx, "peer"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("CreateChat: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.SendMessage(ctx, "chat", "hi", ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("SendMessage: expected ErrNotAuthenticated, got %v", err)
	}
	if err := svc.BlockUser(ctx, "peer"); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("BlockUser: expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCreateChatIncludesCreator(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	chat, err := f.svc.CreateChat(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if len(chat.Participants) != 2 || chat.Participants[0] != f.alice.ID || chat.Participants[1] != f.bob.ID {
		t.Fatalf("unexpected participants: %v", chat.Participants)
	}

	chats, err := f.svc.FetchChats(ctx)
	if err != nil {
		t.Fatalf("fetch chats: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != chat.ID {
		t.Fatalf("unexpected chat list: %+v", chats)
	}
}

func TestSendMessageUpdatesActiveChat(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	chat, err := f.svc.CreateChat(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if _, err := f.svc.OpenChat(ctx, chat.ID); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	message, err := f.svc.SendMessage(ctx, chat.ID, "hello", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if message.Type != models.MessageTypeText {
		t.Fatalf("expected text default, got %q", message.Type)
	}

	state := f.svc.State()
	if len(state.Messages) != 1 || state.Messages[0].Content != "hello" {
		t.Fatalf("active history not updated: %+v", state.Messages)
	}
	if state.Chats[0].LastMessage == nil || state.Chats[0].LastMessage.ID != message.ID {
		t.Fatalf("chat list cache not updated: %+v", state.Chats[0])
	}
}

func TestSendMessageUnknownChat(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	if _, err := f.svc.SendMessage(ctx, "ghost", "hi", ""); !errors.Is(err, database.ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}
}

func TestOpenChatMarksPeerMessagesRead(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	chat, err := f.svc.CreateChat(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	// Bob writes while Alice is away.
	if _, err := f.db.CreateMessage(ctx, database.CreateMessageInput{ChatID: chat.ID, SenderID: f.bob.ID, Content: "ping"}); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if _, err := f.svc.SendMessage(ctx, chat.ID, "my own", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	messages, err := f.svc.OpenChat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "ping" {
		t.Fatalf("expected oldest first: %+v", messages)
	}
	if !messages[0].IsRead {
		t.Fatal("peer message should be marked read")
	}
	if messages[1].IsRead {
		t.Fatal("reader's own message must stay unread")
	}

	// The flag is persisted, not just local.
	stored, err := f.db.GetChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("reload messages: %v", err)
	}
	if !stored[0].IsRead || stored[1].IsRead {
		t.Fatalf("persisted read flags wrong: %+v", stored)
	}
}

func TestDeleteMessageDropsFromHistory(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	chat, err := f.svc.CreateChat(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if _, err := f.svc.OpenChat(ctx, chat.ID); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	first, err := f.svc.SendMessage(ctx, chat.ID, "first", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	second, err := f.svc.SendMessage(ctx, chat.ID, "second", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := f.svc.DeleteMessage(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	state := f.svc.State()
	if len(state.Messages) != 1 || state.Messages[0].ID != first.ID {
		t.Fatalf("history not pruned: %+v", state.Messages)
	}

	// The chat's cached last message falls back to the survivor.
	chats, err := f.db.GetUserChats(ctx, f.alice.ID)
	if err != nil {
		t.Fatalf("reload chats: %v", err)
	}
	if chats[0].LastMessage == nil || chats[0].LastMessage.ID != first.ID {
		t.Fatalf("last-message cache not recomputed: %+v", chats[0].LastMessage)
	}
}

func TestBlockUserPersists(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	if err := f.svc.BlockUser(ctx, f.bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := f.svc.BlockUser(ctx, f.bob.ID); err != nil {
		t.Fatalf("repeat block: %v", err)
	}

	blocked, err := f.db.ListBlocked(ctx, f.alice.ID)
	if err != nil {
		t.Fatalf("list blocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0] != f.bob.ID {
		t.Fatalf("unexpected block list: %v", blocked)
	}
}

func TestBlockUserDropsChatsLocally(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	carol, err := f.db.CreateUser(ctx, database.CreateUserInput{Email: "carol@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("seed carol: %v", err)
	}

	bobChat, err := f.svc.CreateChat(ctx, f.bob.ID)
	if err != nil {
		t.Fatalf("create bob chat: %v", err)
	}
	carolChat, err := f.svc.CreateChat(ctx, carol.ID)
	if err != nil {
		t.Fatalf("create carol chat: %v", err)
	}
	if _, err := f.svc.OpenChat(ctx, bobChat.ID); err != nil {
		t.Fatalf("open chat: %v", err)
	}

	if err := f.svc.BlockUser(ctx, f.bob.ID); err != nil {
		t.Fatalf("block: %v", err)
	}

	state := f.svc.State()
	if len(state.Chats) != 1 || state.Chats[0].ID != carolChat.ID {
		t.Fatalf("expected only the carol chat to remain, got %+v", state.Chats)
	}
	if state.CurrentChatID != "" || state.Messages != nil {
		t.Fatalf("active chat with blocked user not closed: %+v", state)
	}
}
