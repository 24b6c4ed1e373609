// Package model provides domain types shared across packages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser         Role = "user"
	RoleAssistant    Role = "assistant"
	RoleTool         Role = "tool"
	RoleThinking     Role = "thinking"
	RoleSystemStatus Role = "system-status"
)

// ToolStatus tracks the lifecycle of a tool execution record.
type ToolStatus string

const (
	ToolQueued        ToolStatus = "queued"
	ToolRunning       ToolStatus = "running"
	ToolSuccess       ToolStatus = "success"
	ToolError         ToolStatus = "error"
	ToolAwaitingInput ToolStatus = "awaiting-input"
)

// Message is one entry in a conversation. Content grows while the
// message is streaming and is frozen once IsStreaming drops to false.
type Message struct {
	ID              string
	Role            Role
	Content         string
	IsStreaming     bool
	IsPinned        bool
	Importance      float64
	Timestamp       time.Time
	ToolName        string
	ToolExecutionID string
	ToolStatus      ToolStatus
	ParentToolName  string
}

// NewMessage creates a message with a fresh id and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewStreamingMessage creates an empty message that will be filled in
// by the stream processor.
func NewStreamingMessage(role Role) Message {
	m := NewMessage(role, "")
	m.IsStreaming = true
	return m
}

// NewToolMessage creates a tool execution record.
func NewToolMessage(toolName, executionID string, status ToolStatus) Message {
	m := NewMessage(RoleTool, "")
	m.ToolName = toolName
	m.ToolExecutionID = executionID
	m.ToolStatus = status
	m.IsStreaming = true
	return m
}

// Pinned marks the message as exempt from recency eviction.
func (m Message) Pinned() Message {
	m.IsPinned = true
	return m
}

// IsToolRecord reports whether the message tracks a tool execution.
func (m Message) IsToolRecord() bool {
	return m.Role == RoleTool || m.ToolExecutionID != ""
}

// TokenUsage contains token usage statistics for one turn.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

// Add accumulates usage from another turn or provider call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
