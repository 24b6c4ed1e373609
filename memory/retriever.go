// Package memory provides long-term memory retrieval for the context
// window builder. The ranking algorithm is deliberately simple; the
// request/response contract is what the rest of the system depends on.
package memory

import (
	"context"
	"time"
)

// Snippet is one retrieved piece of prior conversation content.
type Snippet struct {
	Content   string
	Score     float64
	CreatedAt time.Time
}

// Retriever searches long-term memory for snippets relevant to a
// query within a conversation scope.
type Retriever interface {
	Search(ctx context.Context, query, scope string, limit int) ([]Snippet, error)
}

// NopRetriever always returns no results. Useful when memory is
// disabled or in tests.
type NopRetriever struct{}

// Search returns an empty result set.
func (NopRetriever) Search(ctx context.Context, query, scope string, limit int) ([]Snippet, error) {
	return nil, nil
}

// Verify NopRetriever implements Retriever
var _ Retriever = NopRetriever{}
