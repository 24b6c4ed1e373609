// Package speech provides the speech synthesis queuing contract used
// by the stream processor. Synthesis engines are external; only the
// queue behavior lives here.
package speech

// Queue receives sentence-level speech units in order.
type Queue interface {
	// Enqueue adds one sentence for synthesis.
	Enqueue(sentence string)

	// Finish signals that no more sentences will arrive for this turn.
	Finish()

	// Cancel drops all pending sentences and stops playback.
	Cancel()
}

// NopQueue discards everything. Used when speech is disabled.
type NopQueue struct{}

func (NopQueue) Enqueue(sentence string) {}
func (NopQueue) Finish()                 {}
func (NopQueue) Cancel()                 {}

// Verify NopQueue implements Queue
var _ Queue = NopQueue{}
