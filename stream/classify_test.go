package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"payload too large", errors.New("Request payload size 2MB too large"), ErrorContextOverflow},
		{"context limit", errors.New("context length limit reached"), ErrorContextOverflow},
		{"context exceeded", errors.New("Context window exceeded"), ErrorContextOverflow},
		{"token limit", errors.New("token limit for model"), ErrorContextOverflow},
		{"too many tokens", errors.New("request has too many tokens"), ErrorContextOverflow},
		{"maximum context", errors.New("exceeds MAXIMUM CONTEXT for model"), ErrorContextOverflow},
		{"auth error mentioning token", errors.New("invalid token"), ErrorTransient},
		{"network fault", errors.New("connection reset by peer"), ErrorTransient},
		{"wrapped cancellation", fmt.Errorf("stream error: %w", context.Canceled), ErrorCancelled},
		{"nil error", nil, ErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
