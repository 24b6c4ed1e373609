// Package stream reconstructs well-bounded messages, tool-execution
// boundaries, control events, and speech segments from the backend's
// incremental chunk stream.
//
// Information Hiding:
// - Per-turn state machine hidden in TurnContext
// - Delta grammar hidden behind ParseDelta
// - Throttling and sentence segmentation internals encapsulated

package stream

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/SyntheticAutonomicMind/SAM-sub003/conversation"
	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
	"github.com/SyntheticAutonomicMind/SAM-sub003/speech"
)

// TurnContext holds the transient per-turn accumulator state. It is
// created when consumption starts and discarded when the turn ends;
// nothing in it survives across turns.
type TurnContext struct {
	targetID   string
	stepBuf    []byte
	contentBuf []byte
	response   []byte

	havePrev    bool
	prevWasTool bool
	toolExecID  string
	toolName    string

	seg       *SentenceSegmenter
	status    Status
	steps     int
	events    []ControlEvent
	finalized bool
}

func newTurnContext(targetID string) *TurnContext {
	return &TurnContext{
		targetID: targetID,
		seg:      NewSentenceSegmenter(),
		status:   StatusIdle,
	}
}

// Result summarizes one consumed turn.
type Result struct {
	// Response is the full accumulated text of the turn, used for
	// token estimation and non-streamed speech fallback.
	Response string

	// Steps is the number of finalized conversational steps.
	Steps int

	// Events are the control events dispatched during the turn.
	Events []ControlEvent

	// Cancelled reports that the turn was cancelled and rolled back.
	Cancelled bool
}

// Processor consumes the ordered chunk stream for one turn. A
// Processor is cheap; create one per conversation and call Consume
// once per outgoing turn.
type Processor struct {
	store    conversation.Store
	speech   speech.Queue
	logger   zerolog.Logger
	interval time.Duration

	onUpdate  UpdateFunc
	onControl func(ControlEvent)
	onStatus  func(Status)
}

// NewProcessor creates a processor writing reconstructed content into
// the given store.
func NewProcessor(store conversation.Store, logger zerolog.Logger) *Processor {
	return &Processor{
		store:    store,
		speech:   speech.NopQueue{},
		logger:   logger,
		interval: DefaultThrottleInterval,
	}
}

// WithSpeech routes sentence units into a speech queue.
func (p *Processor) WithSpeech(q speech.Queue) *Processor {
	if q != nil {
		p.speech = q
	}
	return p
}

// WithThrottleInterval overrides the update coalescing window.
func (p *Processor) WithThrottleInterval(interval time.Duration) *Processor {
	p.interval = interval
	return p
}

// WithUpdateHandler observes coalesced (messageID, content) updates
// after they are written to the store.
func (p *Processor) WithUpdateHandler(fn UpdateFunc) *Processor {
	p.onUpdate = fn
	return p
}

// WithControlHandler receives dispatched control events.
func (p *Processor) WithControlHandler(fn func(ControlEvent)) *Processor {
	p.onControl = fn
	return p
}

// WithStatusHandler observes processing status transitions.
func (p *Processor) WithStatusHandler(fn func(Status)) *Processor {
	p.onStatus = fn
	return p
}

// Consume iterates the chunk stream to exhaustion or cancellation.
// targetID is the message the first deltas belong to; chunks carrying
// a different TargetMessageID retarget subsequent deltas. Errors from
// the chunk producer are the caller's to classify after Consume
// returns; cancellation is not an error and rolls back incomplete
// state.
func (p *Processor) Consume(ctx context.Context, targetID string, chunks <-chan model.StreamChunk) Result {
	tc := newTurnContext(targetID)
	throttle := NewThrottle(p.interval, p.deliver)
	defer throttle.Stop()

	for {
		select {
		case <-ctx.Done():
			p.rollback(tc, throttle)
			return p.result(tc, true)
		case chunk, ok := <-chunks:
			if !ok {
				if ctx.Err() != nil {
					p.rollback(tc, throttle)
					return p.result(tc, true)
				}
				p.finish(tc, throttle)
				return p.result(tc, false)
			}
			// Cancellation wins the race against a chunk that
			// arrives after the context is already done.
			if ctx.Err() != nil {
				p.rollback(tc, throttle)
				return p.result(tc, true)
			}
			p.handleChunk(tc, throttle, chunk)
		}
	}
}

func (p *Processor) handleChunk(tc *TurnContext, throttle *Throttle, chunk model.StreamChunk) {
	// A new target id means a new logical message has begun upstream.
	// The store owns message creation; we only retarget the
	// accumulator.
	if chunk.TargetMessageID != "" && chunk.TargetMessageID != tc.targetID {
		throttle.Flush(tc.targetID)
		tc.stepBuf = tc.stepBuf[:0]
		tc.contentBuf = tc.contentBuf[:0]
		tc.targetID = chunk.TargetMessageID
		tc.finalized = false
	}

	if chunk.IsTerminal() {
		p.finalizeTarget(tc, throttle)
		return
	}

	delta := ParseDelta(chunk.DeltaContent)

	if delta.Err != nil {
		// Losing one event must not abort the turn.
		p.logger.Warn().Err(delta.Err).Msg("dropping malformed control event")
		return
	}
	if delta.Control != nil {
		tc.events = append(tc.events, *delta.Control)
		if p.onControl != nil {
			p.onControl(*delta.Control)
		}
		return
	}

	p.setStatus(tc, delta.Status)

	// Boundary detection: a new conversational step begins when the
	// tool/content classification flips, or when consecutive tool
	// chunks belong to different executions.
	if tc.havePrev && p.isBoundary(tc, chunk) {
		p.flushStep(tc, throttle)
	}
	if chunk.IsToolChunk {
		tc.toolExecID = chunk.ToolExecutionID
		tc.toolName = chunk.ToolName
		if chunk.ToolStatus != "" {
			status := chunk.ToolStatus
			_ = p.store.UpdateMessage(context.Background(), tc.targetID, conversation.MessageUpdate{ToolStatus: &status})
		}
	}
	tc.havePrev = true
	tc.prevWasTool = chunk.IsToolChunk

	if delta.Text == "" {
		return
	}

	tc.stepBuf = append(tc.stepBuf, delta.Text...)
	tc.response = append(tc.response, delta.Text...)

	if !chunk.IsToolChunk {
		tc.contentBuf = append(tc.contentBuf, delta.Text...)
		throttle.Set(tc.targetID, string(tc.contentBuf))
		for _, sentence := range tc.seg.Feed(delta.Text) {
			p.speech.Enqueue(sentence)
		}
	}
}

// isBoundary reports whether the chunk starts a new conversational
// step relative to the tracked previous chunk.
func (p *Processor) isBoundary(tc *TurnContext, chunk model.StreamChunk) bool {
	if chunk.IsToolChunk != tc.prevWasTool {
		return true
	}
	if !chunk.IsToolChunk {
		return false
	}
	if chunk.ToolExecutionID != "" || tc.toolExecID != "" {
		return chunk.ToolExecutionID != tc.toolExecID
	}
	// No execution ids at all: fall back to comparing names. This can
	// merge genuinely distinct back-to-back calls to the same tool.
	return chunk.ToolName != tc.toolName
}

// flushStep finalizes the current step's text and resets the step
// accumulator.
func (p *Processor) flushStep(tc *TurnContext, throttle *Throttle) {
	if len(tc.stepBuf) == 0 {
		return
	}
	throttle.Flush(tc.targetID)
	tc.stepBuf = tc.stepBuf[:0]
	tc.steps++
}

// finalizeTarget handles the terminal stop signal: flush everything
// pending for the tracked message and mark it complete.
func (p *Processor) finalizeTarget(tc *TurnContext, throttle *Throttle) {
	if tc.finalized {
		return
	}
	p.flushStep(tc, throttle)

	if remainder := tc.seg.Flush(); remainder != "" {
		p.speech.Enqueue(remainder)
	}
	p.speech.Finish()

	throttle.Flush(tc.targetID)
	_ = p.store.CompleteStreamingMessage(context.Background(), tc.targetID, nil)
	p.setStatus(tc, StatusIdle)
	tc.finalized = true
}

// finish runs when the chunk channel closes without a terminal chunk.
// Stream closure is a legitimate termination, so the target is
// finalized the same way.
func (p *Processor) finish(tc *TurnContext, throttle *Throttle) {
	p.finalizeTarget(tc, throttle)
}

// rollback discards incomplete state after cancellation. The consuming
// context is already done, so store mutations use a fresh context.
func (p *Processor) rollback(tc *TurnContext, throttle *Throttle) {
	throttle.Discard(tc.targetID)
	p.speech.Cancel()

	ctx := context.Background()
	if msg, ok, err := p.store.Message(ctx, tc.targetID); err == nil && ok {
		if msg.IsStreaming || msg.Content == "" {
			_ = p.store.RemoveMessage(ctx, tc.targetID)
		}
	}
	p.setStatus(tc, StatusIdle)
}

func (p *Processor) setStatus(tc *TurnContext, status Status) {
	if tc.status == status {
		return
	}
	tc.status = status
	if p.onStatus != nil {
		p.onStatus(status)
	}
}

// deliver writes one coalesced update into the store and notifies the
// observer.
func (p *Processor) deliver(messageID, content string) {
	_ = p.store.UpdateMessage(context.Background(), messageID, conversation.MessageUpdate{Content: &content})
	if p.onUpdate != nil {
		p.onUpdate(messageID, content)
	}
}

func (p *Processor) result(tc *TurnContext, cancelled bool) Result {
	return Result{
		Response:  string(tc.response),
		Steps:     tc.steps,
		Events:    tc.events,
		Cancelled: cancelled,
	}
}
