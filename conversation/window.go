// Context window builder: selects which historical messages and
// retrieved memory accompany the next outgoing turn.

package conversation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/SyntheticAutonomicMind/SAM-sub003/memory"
	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

// Window is the bounded slice of history resubmitted on the next turn,
// plus the memory-augmented system preamble.
type Window struct {
	Messages       []model.Message
	SystemPreamble string
}

// Builder selects context windows. Safe for concurrent use; Build
// performs at most one retriever call per invocation.
type Builder struct {
	retriever memory.Retriever
	preamble  string
	memLimit  int
	logger    zerolog.Logger
}

// Adaptive window limits. Small conversations keep everything that
// fits; long conversations grow the window instead of losing context.
const (
	smallConversation  = 10
	mediumConversation = 30

	smallWindow  = 8
	mediumWindow = 16
	largeWindow  = 24
)

// toolAvailabilityInstruction is always appended to the preamble so
// the model never claims a registered capability is absent.
const toolAvailabilityInstruction = `You have access to the registered tools listed for this session. ` +
	`Never state that a capability is unavailable when a tool provides it; invoke the tool instead.`

// NewBuilder creates a window builder. A nil retriever disables memory
// augmentation.
func NewBuilder(retriever memory.Retriever, logger zerolog.Logger) *Builder {
	if retriever == nil {
		retriever = memory.NopRetriever{}
	}
	return &Builder{
		retriever: retriever,
		memLimit:  3,
		logger:    logger,
	}
}

// WithPreamble sets the base system preamble.
func (b *Builder) WithPreamble(preamble string) *Builder {
	b.preamble = preamble
	return b
}

// WithMemoryLimit sets how many snippets are requested per turn.
func (b *Builder) WithMemoryLimit(limit int) *Builder {
	b.memLimit = limit
	return b
}

// Build selects the window for the next turn. pinnedOverride ids are
// treated as pinned in addition to messages flagged IsPinned.
// Retriever failure is non-fatal: the window is built with an empty
// memory block.
func (b *Builder) Build(ctx context.Context, history []model.Message, pinnedOverride map[string]struct{}, totalMessageCount int, query, scope string) Window {
	limit := adaptiveLimit(totalMessageCount)

	var pinned, unpinned []model.Message
	for _, msg := range history {
		_, override := pinnedOverride[msg.ID]
		if msg.IsPinned || override {
			pinned = append(pinned, msg)
		} else {
			unpinned = append(unpinned, msg)
		}
	}

	remaining := limit - len(pinned)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > len(unpinned) {
		remaining = len(unpinned)
	}
	recent := unpinned[len(unpinned)-remaining:]

	selected := make([]model.Message, 0, len(pinned)+len(recent))
	selected = append(selected, pinned...)
	selected = append(selected, recent...)

	// Chronological order is mandatory for coherence regardless of
	// pin status.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Timestamp.Before(selected[j].Timestamp)
	})

	return Window{
		Messages:       selected,
		SystemPreamble: b.buildPreamble(ctx, query, scope),
	}
}

// buildPreamble assembles the system preamble: base text, retrieved
// memory block, and the standing tool availability instruction.
func (b *Builder) buildPreamble(ctx context.Context, query, scope string) string {
	var sb strings.Builder
	if b.preamble != "" {
		sb.WriteString(b.preamble)
	}

	snippets, err := b.retriever.Search(ctx, query, scope, b.memLimit)
	if err != nil {
		b.logger.Debug().Err(err).Msg("memory retrieval failed, continuing without")
	} else if len(snippets) > 0 {
		sb.WriteString("\n\nRelevant long-term memory:\n")
		for _, s := range snippets {
			sb.WriteString(fmt.Sprintf("- %s\n", s.Content))
		}
	}

	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(toolAvailabilityInstruction)
	return sb.String()
}

// adaptiveLimit returns the window size for a conversation of the
// given total length.
func adaptiveLimit(totalMessageCount int) int {
	switch {
	case totalMessageCount < smallConversation:
		return smallWindow
	case totalMessageCount < mediumConversation:
		return mediumWindow
	default:
		return largeWindow
	}
}
