package conversation

import (
	"strings"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

// Keyword sets for the importance heuristics. Matching is
// case-insensitive on substrings.
var (
	constraintKeywords = []string{
		"must", "require", "budget", "limit", "within", "radius",
		"deadline", "no more than", "at least", "only",
	}

	confirmationKeywords = []string{
		"yes", "confirmed", "proceed", "go ahead", "sounds good",
		"that works", "correct", "agreed",
	}

	acknowledgementKeywords = []string{
		"thanks", "thank you", "ok", "okay", "got it", "cool", "great",
	}
)

// ScoreImportance assigns a relevance score in [0,1] to a message.
// The score is attached for future ranking; window selection currently
// uses only the pin flag and recency.
func ScoreImportance(msg model.Message) float64 {
	lower := strings.ToLower(msg.Content)

	score := 0.5
	if msg.Role == model.RoleUser {
		score = 0.7
	}

	if msg.Role == model.RoleAssistant && strings.Contains(msg.Content, "?") {
		score = max(score, 0.85)
	}

	for _, kw := range constraintKeywords {
		if strings.Contains(lower, kw) {
			score = max(score, 0.9)
			break
		}
	}

	if len(msg.Content) < 200 {
		for _, kw := range confirmationKeywords {
			if strings.Contains(lower, kw) {
				score = max(score, 0.85)
				break
			}
		}
	}

	// Short pure acknowledgements carry almost no signal.
	if len(msg.Content) < 50 && isAcknowledgement(lower) {
		score = 0.3
	}

	if msg.Role == model.RoleUser && len(msg.Content) > 300 {
		score = min(score+0.1, 1.0)
	}

	return score
}

// isAcknowledgement reports whether the text is nothing but a social
// acknowledgement, with no constraint or confirmation content.
func isAcknowledgement(lower string) bool {
	matched := false
	for _, kw := range acknowledgementKeywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, kw := range constraintKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	for _, kw := range confirmationKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}

// initialPinnedUserMessages is how many leading user messages of a
// conversation are pinned so the original intent survives eviction.
const initialPinnedUserMessages = 3

// ShouldPinUserMessage implements the producer-side pin policy: the
// first few user messages are pinned, and explicit human responses to
// a tool-driven collaboration pause are always pinned.
func ShouldPinUserMessage(priorUserMessages int, collaborationResponse bool) bool {
	if collaborationResponse {
		return true
	}
	return priorUserMessages < initialPinnedUserMessages
}
