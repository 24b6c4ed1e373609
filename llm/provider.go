// Package llm provides streaming LLM provider abstractions.
//
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Mapping of native stream events onto model.StreamChunk

package llm

import (
	"context"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

// Provider defines the abstract interface for streaming LLM backends.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// StreamChat streams a chat completion, sending chunks to the
	// provided channel. The caller owns the channel; providers never
	// close it. Returns token usage when the backend reports it.
	StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- model.StreamChunk) (*model.TokenUsage, error)
}

// send delivers one chunk, honoring cancellation.
func send(ctx context.Context, chunks chan<- model.StreamChunk, chunk model.StreamChunk) error {
	select {
	case chunks <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
