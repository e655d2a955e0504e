package database

import (
	"context"
	"errors"
	"testing"

	"github.com/nusaiba/backend/internal/models"
)

func TestCreateMessageRequiresChat(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateMessage(ctx, CreateMessageInput{ChatID: "ghost", SenderID: "a", Content: "hi"})
	if !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound, got %v", err)
	}
}

func TestChatLastMessageCache(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	chat, err := svc.CreateChat(ctx, []string{"alice", "bob"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	sent, err := svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "alice", Content: "hello bob"})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}

	bobChats, err := svc.GetUserChats(ctx, "bob")
	if err != nil {
		t.Fatalf("get chats: %v", err)
	}
	if len(bobChats) != 1 {
		t.Fatalf("expected one chat for bob, got %d", len(bobChats))
	}
	last := bobChats[0].LastMessage
	if last == nil {
		t.Fatal("expected last-message cache to be populated")
	}
	if last.ID != sent.ID || last.Content != "hello bob" {
		t.Fatalf("unexpected last message: %+v", last)
	}

	if chats, _ := svc.GetUserChats(ctx, "carol"); len(chats) != 0 {
		t.Fatalf("carol should not see the chat: %+v", chats)
	}
}

func TestGetChatMessagesOldestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	chat, _ := svc.CreateChat(ctx, []string{"a", "b"})
	first, _ := svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "a", Content: "1"})
	second, _ := svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "b", Content: "2"})
	third, _ := svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "a", Content: "3"})

	messages, err := svc.GetChatMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("get messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].ID != first.ID || messages[1].ID != second.ID || messages[2].ID != third.ID {
		t.Fatalf("unexpected order: %s %s %s", messages[0].Content, messages[1].Content, messages[2].Content)
	}
	if messages[0].Type != models.MessageTypeText {
		t.Fatalf("expected default text type, got %q", messages[0].Type)
	}
}

func TestMarkMessagesAsReadIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	chat, _ := svc.CreateChat(ctx, []string{"alice", "bob"})
	svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "alice", Content: "from alice"})
	svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "bob", Content: "from bob"})

	snapshot := func() map[string]bool {
		state := make(map[string]bool)
		messages, _ := svc.GetChatMessages(ctx, chat.ID)
		for _, m := range messages {
			state[m.SenderID] = m.IsRead
		}
		return state
	}

	if err := svc.MarkMessagesAsRead(ctx, chat.ID, "bob"); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	once := snapshot()
	if !once["alice"] {
		t.Fatal("alice's message should be read by bob")
	}
	if once["bob"] {
		t.Fatal("bob's own message must never be flipped")
	}

	if err := svc.MarkMessagesAsRead(ctx, chat.ID, "bob"); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	twice := snapshot()
	if once["alice"] != twice["alice"] || once["bob"] != twice["bob"] {
		t.Fatalf("mark-as-read is not idempotent: %v vs %v", once, twice)
	}
}

func TestDeleteMessageRecomputesLastMessage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	chat, _ := svc.CreateChat(ctx, []string{"a", "b"})
	first, _ := svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "a", Content: "keep"})
	last, _ := svc.CreateMessage(ctx, CreateMessageInput{ChatID: chat.ID, SenderID: "b", Content: "drop"})

	if err := svc.DeleteMessage(ctx, last.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	messages, _ := svc.GetChatMessages(ctx, chat.ID)
	if len(messages) != 1 || messages[0].ID != first.ID {
		t.Fatalf("unexpected messages after delete: %+v", messages)
	}

	chats, _ := svc.GetUserChats(ctx, "a")
	if chats[0].LastMessage == nil || chats[0].LastMessage.ID != first.ID {
		t.Fatalf("last-message cache not recomputed: %+v", chats[0].LastMessage)
	}

	if err := svc.DeleteMessage(ctx, first.ID); err != nil {
		t.Fatalf("delete remaining: %v", err)
	}
	chats, _ = svc.GetUserChats(ctx, "a")
	if chats[0].LastMessage != nil {
		t.Fatalf("expected empty last-message cache, got %+v", chats[0].LastMessage)
	}

	if err := svc.DeleteMessage(ctx, "nope"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}
