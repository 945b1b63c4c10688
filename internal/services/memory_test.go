package services_test

import (
	"context"
	"testing"

	"github.com/grailstone/think-web-ui/internal/models"
	"github.com/grailstone/think-web-ui/internal/services"
)

func TestMemoryChats(t *testing.T) {
	store := services.NewMemory()
	ctx := context.Background()

	firstID, err := store.AddChat(ctx, models.Chat{ID: "a", Title: "First"})
	if err != nil {
		t.Fatalf("AddChat() error = %v", err)
	}
	secondID, err := store.AddChat(ctx, models.Chat{ID: "b", Title: "Second"})
	if err != nil {
		t.Fatalf("AddChat() error = %v", err)
	}
	if firstID == secondID {
		t.Fatalf("AddChat() returned duplicate ID %q", firstID)
	}

	chats, err := store.Chats(ctx)
	if err != nil {
		t.Fatalf("Chats() error = %v", err)
	}
	if len(chats) != 2 {
		t.Fatalf("Chats() returned %d chats, want 2", len(chats))
	}
	if chats[0].ID != secondID {
		t.Errorf("Chats()[0].ID = %q, want newest chat %q first", chats[0].ID, secondID)
	}

	if err := store.UpdateChat(ctx, models.Chat{ID: secondID, Title: "Renamed"}); err != nil {
		t.Fatalf("UpdateChat() error = %v", err)
	}
	chats, _ = store.Chats(ctx)
	if chats[0].Title != "Renamed" {
		t.Errorf("chat title = %q, want %q", chats[0].Title, "Renamed")
	}

	// Unknown chats are silently ignored.
	if err := store.UpdateChat(ctx, models.Chat{ID: "missing", Title: "x"}); err != nil {
		t.Errorf("UpdateChat() on unknown chat error = %v, want nil", err)
	}
}

func TestMemoryMessages(t *testing.T) {
	store := services.NewMemory()
	ctx := context.Background()

	chatID, err := store.AddChat(ctx, models.Chat{ID: "a"})
	if err != nil {
		t.Fatalf("AddChat() error = %v", err)
	}

	userID, err := store.AddMessage(ctx, chatID, models.Message{ID: "u", Role: models.RoleUser, Content: "Hi"})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	aiID, err := store.AddMessage(ctx, chatID, models.Message{ID: "ai", Role: models.RoleAssistant})
	if err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}

	msgs, err := store.Messages(ctx, chatID)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("Messages() returned %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != userID || msgs[1].ID != aiID {
		t.Errorf("message order = [%q, %q], want [%q, %q]", msgs[0].ID, msgs[1].ID, userID, aiID)
	}

	updated := msgs[1]
	updated.Content = "<think>reasoning</think>Hello!"
	if err := store.UpdateMessage(ctx, chatID, updated); err != nil {
		t.Fatalf("UpdateMessage() error = %v", err)
	}
	msgs, _ = store.Messages(ctx, chatID)
	if msgs[1].Content != updated.Content {
		t.Errorf("updated content = %q, want %q", msgs[1].Content, updated.Content)
	}
}
