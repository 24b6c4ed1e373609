package speech

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestCommandQueueLifecycle(t *testing.T) {
	q := NewCommandQueue("true", nil, zerolog.Nop())

	q.Enqueue("First turn.")
	q.Finish()

	// Turn boundaries must not kill the queue.
	q.Enqueue("Second turn.")
	q.Cancel()
	q.Enqueue("After cancel.")

	q.Close()
	q.Close()

	// Enqueue after Close is a silent no-op.
	q.Enqueue("dropped")
}
