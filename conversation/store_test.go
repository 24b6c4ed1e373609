package conversation

import (
	"context"
	"testing"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

func TestInMemoryStoreAddAndGet(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	msg := model.NewMessage(model.RoleUser, "hello")
	if err := store.AddMessage(ctx, msg); err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}

	got, ok, err := store.Message(ctx, msg.ID)
	if err != nil || !ok {
		t.Fatalf("Message lookup failed: ok=%v err=%v", ok, err)
	}
	if got.Content != "hello" {
		t.Errorf("expected 'hello', got %q", got.Content)
	}
}

func TestInMemoryStoreAddIsIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	msg := model.NewMessage(model.RoleUser, "once")
	_ = store.AddMessage(ctx, msg)
	_ = store.AddMessage(ctx, msg)

	messages, _ := store.Messages(ctx)
	if len(messages) != 1 {
		t.Errorf("expected 1 message after duplicate add, got %d", len(messages))
	}
}

func TestInMemoryStoreUpdatePartialFields(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	msg := model.NewToolMessage("search", "e1", model.ToolQueued)
	_ = store.AddMessage(ctx, msg)

	content := "results"
	_ = store.UpdateMessage(ctx, msg.ID, MessageUpdate{Content: &content})

	got, _, _ := store.Message(ctx, msg.ID)
	if got.Content != "results" {
		t.Errorf("content not updated: %q", got.Content)
	}
	if got.ToolStatus != model.ToolQueued {
		t.Errorf("status should be untouched, got %q", got.ToolStatus)
	}

	status := model.ToolSuccess
	_ = store.UpdateMessage(ctx, msg.ID, MessageUpdate{ToolStatus: &status})

	got, _, _ = store.Message(ctx, msg.ID)
	if got.ToolStatus != model.ToolSuccess {
		t.Errorf("status not updated, got %q", got.ToolStatus)
	}
	if got.Content != "results" {
		t.Errorf("content should be untouched, got %q", got.Content)
	}
}

func TestInMemoryStoreCompleteStreaming(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	msg := model.NewStreamingMessage(model.RoleAssistant)
	_ = store.AddMessage(ctx, msg)

	usage := &model.TokenUsage{TotalTokens: 42}
	_ = store.CompleteStreamingMessage(ctx, msg.ID, usage)
	_ = store.CompleteStreamingMessage(ctx, msg.ID, usage) // idempotent

	got, _, _ := store.Message(ctx, msg.ID)
	if got.IsStreaming {
		t.Error("expected streaming cleared")
	}
	if u, ok := store.Usage(msg.ID); !ok || u.TotalTokens != 42 {
		t.Errorf("expected usage recorded, got %+v ok=%v", u, ok)
	}
}

func TestInMemoryStoreRemove(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first := model.NewMessage(model.RoleUser, "a")
	second := model.NewMessage(model.RoleAssistant, "b")
	_ = store.AddMessage(ctx, first)
	_ = store.AddMessage(ctx, second)

	_ = store.RemoveMessage(ctx, first.ID)
	_ = store.RemoveMessage(ctx, first.ID) // idempotent

	if _, ok, _ := store.Message(ctx, first.ID); ok {
		t.Error("expected message removed")
	}
	got, _, _ := store.Message(ctx, second.ID)
	if got.Content != "b" {
		t.Errorf("index corrupted after removal: %+v", got)
	}
}
