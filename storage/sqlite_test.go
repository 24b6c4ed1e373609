package storage

import (
	"context"
	"testing"
	"time"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	store, err := NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := model.NewMessage(model.RoleUser, "plan a trip").Pinned()
	user.Importance = 0.9
	assistant := model.NewMessage(model.RoleAssistant, "where to?")
	tool := model.NewToolMessage("web_search", "e1", model.ToolSuccess)
	tool.Content = "found flights"
	tool.IsStreaming = false

	if err := store.SaveSession(ctx, "trip", []model.Message{user, assistant, tool}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := store.LoadSession(ctx, "trip")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(loaded))
	}

	if loaded[0].Content != "plan a trip" || !loaded[0].IsPinned {
		t.Errorf("pinned user message not round-tripped: %+v", loaded[0])
	}
	if loaded[0].Importance != 0.9 {
		t.Errorf("importance lost: %v", loaded[0].Importance)
	}
	if loaded[2].ToolName != "web_search" || loaded[2].ToolExecutionID != "e1" {
		t.Errorf("tool fields lost: %+v", loaded[2])
	}
	if loaded[2].ToolStatus != model.ToolSuccess {
		t.Errorf("tool status lost: %q", loaded[2].ToolStatus)
	}

	// Timestamps survive at millisecond precision.
	if loaded[0].Timestamp.UnixMilli() != user.Timestamp.UnixMilli() {
		t.Errorf("timestamp drift: %v vs %v", loaded[0].Timestamp, user.Timestamp)
	}
}

func TestSaveSessionReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := model.NewMessage(model.RoleUser, "v1")
	if err := store.SaveSession(ctx, "s", []model.Message{first}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	second := model.NewMessage(model.RoleUser, "v2")
	if err := store.SaveSession(ctx, "s", []model.Message{second}); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, _ := store.LoadSession(ctx, "s")
	if len(loaded) != 1 || loaded[0].Content != "v2" {
		t.Errorf("expected replacement, got %+v", loaded)
	}
}

func TestLoadNonexistentSession(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty slice, got %d messages", len(loaded))
	}
}

func TestDeleteSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msg := model.NewMessage(model.RoleUser, "bye")
	_ = store.SaveSession(ctx, "s", []model.Message{msg})

	if err := store.DeleteSession(ctx, "s"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	loaded, _ := store.LoadSession(ctx, "s")
	if len(loaded) != 0 {
		t.Errorf("expected no messages after delete, got %d", len(loaded))
	}

	sessions, _ := store.ListSessions(ctx)
	for _, id := range sessions {
		if id == "s" {
			t.Error("session still listed after delete")
		}
	}
}

func TestListSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_ = store.SaveSession(ctx, "a", []model.Message{model.NewMessage(model.RoleUser, "1")})
	time.Sleep(10 * time.Millisecond)
	_ = store.SaveSession(ctx, "b", []model.Message{model.NewMessage(model.RoleUser, "2")})

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}
