// Package llm shared request types.
package llm

import "github.com/SyntheticAutonomicMind/SAM-sub003/model"

// ChatMessage represents one outgoing chat message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: "system", Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: "user", Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: "assistant", Content: content}
}

// FromWindow converts selected history into outgoing chat messages.
// The preamble becomes the system message; tool records are folded
// into user-visible context lines so the backend sees what already
// ran.
func FromWindow(preamble string, history []model.Message) []ChatMessage {
	messages := make([]ChatMessage, 0, len(history)+1)
	if preamble != "" {
		messages = append(messages, SystemMessage(preamble))
	}
	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			messages = append(messages, UserMessage(msg.Content))
		case model.RoleAssistant:
			messages = append(messages, AssistantMessage(msg.Content))
		case model.RoleTool:
			if msg.Content != "" {
				messages = append(messages, UserMessage("Tool "+msg.ToolName+" result: "+msg.Content))
			}
		}
	}
	return messages
}
