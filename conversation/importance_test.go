package conversation

import (
	"strings"
	"testing"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

func TestScoreImportance(t *testing.T) {
	tests := []struct {
		name    string
		role    model.Role
		content string
		want    float64
	}{
		{"user base", model.RoleUser, "tell me about trains", 0.7},
		{"assistant base", model.RoleAssistant, "trains are long", 0.5},
		{"assistant question", model.RoleAssistant, "which city do you mean?", 0.85},
		{"constraint keyword", model.RoleUser, "the budget is 500 euros", 0.9},
		{"short confirmation", model.RoleUser, "yes, confirmed", 0.85},
		{"pure acknowledgement", model.RoleUser, "thanks!", 0.3},
		{"long user message", model.RoleUser, strings.Repeat("details ", 50), 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := model.NewMessage(tt.role, tt.content)
			got := ScoreImportance(msg)
			if got < tt.want-0.001 || got > tt.want+0.001 {
				t.Errorf("ScoreImportance(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestScoreImportanceCapped(t *testing.T) {
	// Long user message with constraints: 0.9 + 0.1 caps at 1.0.
	content := "must stay within the budget. " + strings.Repeat("and remember the details. ", 20)
	msg := model.NewMessage(model.RoleUser, content)
	if got := ScoreImportance(msg); got > 1.0 {
		t.Errorf("score exceeded cap: %v", got)
	}
}

func TestShouldPinUserMessage(t *testing.T) {
	tests := []struct {
		name          string
		priorMessages int
		collaboration bool
		want          bool
	}{
		{"first message", 0, false, true},
		{"third message", 2, false, true},
		{"fourth message", 3, false, false},
		{"late collaboration response", 50, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldPinUserMessage(tt.priorMessages, tt.collaboration); got != tt.want {
				t.Errorf("ShouldPinUserMessage(%d, %v) = %v, want %v",
					tt.priorMessages, tt.collaboration, got, tt.want)
			}
		})
	}
}
