// Update throttle: coalesces downstream content updates so observers
// see at most one update per message id per tick. Superseded pending
// updates are dropped, not queued.

package stream

import (
	"sync"
	"time"
)

// DefaultThrottleInterval matches one display frame.
const DefaultThrottleInterval = 16 * time.Millisecond

// UpdateFunc delivers one coalesced (messageID, content) pair.
type UpdateFunc func(messageID, content string)

// Throttle rate-limits content propagation. A later Set for the same
// message id always overwrites an earlier unsent one.
type Throttle struct {
	interval time.Duration
	deliver  UpdateFunc

	mu      sync.Mutex
	pending map[string]string
	stop    chan struct{}
	done    chan struct{}
}

// NewThrottle starts a throttle delivering on the given interval. An
// interval of zero uses the default.
func NewThrottle(interval time.Duration, deliver UpdateFunc) *Throttle {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	t := &Throttle{
		interval: interval,
		deliver:  deliver,
		pending:  make(map[string]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Throttle) run() {
	defer close(t.done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.flushAll()
		case <-t.stop:
			t.flushAll()
			return
		}
	}
}

// Set records the latest content for a message id, replacing any
// unsent update for that id.
func (t *Throttle) Set(messageID, content string) {
	t.mu.Lock()
	t.pending[messageID] = content
	t.mu.Unlock()
}

// Flush delivers the pending update for one message id immediately.
func (t *Throttle) Flush(messageID string) {
	t.mu.Lock()
	content, ok := t.pending[messageID]
	if ok {
		delete(t.pending, messageID)
	}
	t.mu.Unlock()

	if ok {
		t.deliver(messageID, content)
	}
}

// Stop flushes all pending updates and halts the timer. Safe to call
// once per throttle.
func (t *Throttle) Stop() {
	close(t.stop)
	<-t.done
}

// Discard drops the pending update for a message id without
// delivering it. Used on cancellation rollback.
func (t *Throttle) Discard(messageID string) {
	t.mu.Lock()
	delete(t.pending, messageID)
	t.mu.Unlock()
}

func (t *Throttle) flushAll() {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return
	}
	batch := t.pending
	t.pending = make(map[string]string)
	t.mu.Unlock()

	for id, content := range batch {
		t.deliver(id, content)
	}
}
