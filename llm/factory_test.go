package llm

import (
	"testing"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		opts     Options
		wantName string
		wantErr  bool
	}{
		{
			name:     "openai",
			provider: "openai",
			opts:     Options{APIKey: "sk-test", Model: "gpt-4o"},
			wantName: "openai",
		},
		{
			name:     "anthropic case insensitive",
			provider: "Anthropic",
			opts:     Options{APIKey: "sk-test", Model: "claude-sonnet-4-20250514"},
			wantName: "anthropic",
		},
		{
			name:     "deepseek",
			provider: "deepseek",
			opts:     Options{APIKey: "sk-test", Model: "deepseek-chat"},
			wantName: "deepseek",
		},
		{
			name:     "gemini",
			provider: "gemini",
			opts:     Options{APIKey: "test-key", Model: "gemini-2.5-flash"},
			wantName: "gemini",
		},
		{
			name:     "missing api key",
			provider: "openai",
			opts:     Options{Model: "gpt-4o"},
			wantErr:  true,
		},
		{
			name:     "unknown provider",
			provider: "grok",
			opts:     Options{APIKey: "sk-test"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.provider, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
			if p.Model() != tt.opts.Model {
				t.Errorf("Model() = %q, want %q", p.Model(), tt.opts.Model)
			}
		})
	}
}

func TestFromWindow(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: "find flights"},
		{Role: model.RoleAssistant, Content: "Searching now."},
		{Role: model.RoleTool, ToolName: "web_search", Content: "3 results"},
		{Role: model.RoleTool, ToolName: "scratchpad", Content: ""},
		{Role: model.RoleThinking, Content: "internal"},
	}

	messages := FromWindow("You are SAM.", history)

	want := []ChatMessage{
		{Role: "system", Content: "You are SAM."},
		{Role: "user", Content: "find flights"},
		{Role: "assistant", Content: "Searching now."},
		{Role: "user", Content: "Tool web_search result: 3 results"},
	}
	if len(messages) != len(want) {
		t.Fatalf("got %d messages, want %d", len(messages), len(want))
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, messages[i], want[i])
		}
	}
}

func TestFromWindowWithoutPreamble(t *testing.T) {
	messages := FromWindow("", []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if len(messages) != 1 || messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
}
