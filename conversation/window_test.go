package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/SyntheticAutonomicMind/SAM-sub003/memory"
	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

// fakeRetriever returns canned snippets or a canned error.
type fakeRetriever struct {
	snippets []memory.Snippet
	err      error
}

func (f *fakeRetriever) Search(ctx context.Context, query, scope string, limit int) ([]memory.Snippet, error) {
	return f.snippets, f.err
}

func makeHistory(pinned, unpinned int) []model.Message {
	base := time.Now().Add(-time.Hour)
	var history []model.Message
	for i := 0; i < pinned+unpinned; i++ {
		msg := model.NewMessage(model.RoleUser, "message")
		msg.Timestamp = base.Add(time.Duration(i) * time.Second)
		if i < pinned {
			msg = msg.Pinned()
		}
		history = append(history, msg)
	}
	return history
}

func TestAdaptiveLimit(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 8}, {9, 8}, {10, 16}, {29, 16}, {30, 24}, {500, 24},
	}
	for _, tt := range tests {
		if got := adaptiveLimit(tt.total); got != tt.want {
			t.Errorf("adaptiveLimit(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestBuildWindowComposition(t *testing.T) {
	// 5 pinned + 40 unpinned at total 50: limit 24, so 5 pinned plus
	// the 19 most recent unpinned.
	builder := NewBuilder(nil, zerolog.Nop())
	history := makeHistory(5, 40)

	window := builder.Build(context.Background(), history, nil, 50, "query", "scope")

	if len(window.Messages) != 24 {
		t.Fatalf("expected 24 messages, got %d", len(window.Messages))
	}

	pinnedCount := 0
	for _, msg := range window.Messages {
		if msg.IsPinned {
			pinnedCount++
		}
	}
	if pinnedCount != 5 {
		t.Errorf("expected all 5 pinned messages present, got %d", pinnedCount)
	}

	for i := 1; i < len(window.Messages); i++ {
		if window.Messages[i].Timestamp.Before(window.Messages[i-1].Timestamp) {
			t.Fatal("window not sorted ascending by timestamp")
		}
	}
}

func TestBuildWindowPinnedOverride(t *testing.T) {
	builder := NewBuilder(nil, zerolog.Nop())
	history := makeHistory(0, 40)
	oldest := history[0]

	override := map[string]struct{}{oldest.ID: {}}
	window := builder.Build(context.Background(), history, override, 40, "q", "s")

	found := false
	for _, msg := range window.Messages {
		if msg.ID == oldest.ID {
			found = true
		}
	}
	if !found {
		t.Error("override-pinned message evicted from window")
	}
}

func TestBuildWindowSmallHistory(t *testing.T) {
	builder := NewBuilder(nil, zerolog.Nop())
	history := makeHistory(0, 3)

	window := builder.Build(context.Background(), history, nil, 3, "q", "s")
	if len(window.Messages) != 3 {
		t.Errorf("expected all 3 messages, got %d", len(window.Messages))
	}
}

func TestPreambleIncludesMemory(t *testing.T) {
	retriever := &fakeRetriever{snippets: []memory.Snippet{
		{Content: "user prefers metric units"},
	}}
	builder := NewBuilder(retriever, zerolog.Nop()).WithPreamble("base prompt")

	window := builder.Build(context.Background(), nil, nil, 0, "units", "s")

	if !strings.Contains(window.SystemPreamble, "user prefers metric units") {
		t.Error("retrieved snippet missing from preamble")
	}
	if !strings.Contains(window.SystemPreamble, "base prompt") {
		t.Error("base preamble missing")
	}
}

func TestPreambleAlwaysAssertsToolAvailability(t *testing.T) {
	builder := NewBuilder(nil, zerolog.Nop())
	window := builder.Build(context.Background(), nil, nil, 0, "q", "s")

	if !strings.Contains(window.SystemPreamble, "Never state that a capability is unavailable") {
		t.Error("standing tool availability instruction missing")
	}
}

func TestRetrieverFailureIsNonFatal(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("store offline")}
	builder := NewBuilder(retriever, zerolog.Nop())
	history := makeHistory(0, 5)

	window := builder.Build(context.Background(), history, nil, 5, "q", "s")

	if len(window.Messages) != 5 {
		t.Errorf("retriever failure must not affect selection, got %d messages", len(window.Messages))
	}
	if window.SystemPreamble == "" {
		t.Error("preamble should still carry the standing instruction")
	}
}
