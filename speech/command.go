// Command-backed synthesizer queue: each sentence is passed as the
// final argument to an external TTS command (say, espeak, edge-tts).

package speech

import (
	"context"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
)

// speechItem is one queued sentence, tagged with the generation it was
// enqueued under so Cancel can invalidate it in place.
type speechItem struct {
	text string
	gen  uint64
}

// CommandQueue runs one synthesis command per sentence on a worker
// goroutine so Enqueue never blocks the stream loop. The queue
// outlives individual turns; Finish and Cancel mark turn boundaries
// while Close shuts the worker down.
type CommandQueue struct {
	name   string
	args   []string
	logger zerolog.Logger

	pending chan speechItem
	done    chan struct{}

	mu     sync.Mutex
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewCommandQueue creates a queue that speaks via the given command.
func NewCommandQueue(name string, args []string, logger zerolog.Logger) *CommandQueue {
	q := &CommandQueue{
		name:    name,
		args:    args,
		logger:  logger,
		pending: make(chan speechItem, 64),
		done:    make(chan struct{}),
	}
	q.ctx, q.cancel = context.WithCancel(context.Background())
	go q.worker()
	return q
}

func (q *CommandQueue) worker() {
	defer close(q.done)
	for item := range q.pending {
		q.mu.Lock()
		gen := q.gen
		ctx := q.ctx
		q.mu.Unlock()

		if item.gen != gen {
			continue // superseded by Cancel
		}

		args := append(append([]string{}, q.args...), item.text)
		cmd := exec.CommandContext(ctx, q.name, args...)
		if err := cmd.Run(); err != nil && ctx.Err() == nil {
			q.logger.Warn().Err(err).Str("command", q.name).Msg("speech synthesis failed")
		}
	}
}

// Enqueue adds a sentence. When the backlog is full the sentence is
// dropped rather than blocking the stream loop.
func (q *CommandQueue) Enqueue(sentence string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.pending <- speechItem{text: sentence, gen: q.gen}:
	default:
		q.logger.Warn().Msg("speech queue full, dropping sentence")
	}
}

// Finish marks the end of a turn. Queued sentences keep playing in the
// background; the next turn may enqueue immediately.
func (q *CommandQueue) Finish() {}

// Cancel drops unplayed sentences and interrupts the one currently
// being synthesized. The queue stays usable for the next turn.
func (q *CommandQueue) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.gen++
	q.cancel()
	q.ctx, q.cancel = context.WithCancel(context.Background())
}

// Close interrupts playback and stops the worker. The queue cannot be
// reused afterwards.
func (q *CommandQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.cancel()
	close(q.pending)
	q.mu.Unlock()
	<-q.done
}

// Verify CommandQueue implements Queue
var _ Queue = (*CommandQueue)(nil)
