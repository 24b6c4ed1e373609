// Package engine drives turns: it builds the context window, opens
// the provider stream, runs the segmentation processor, and maps
// terminal failures into user-facing notifications.
//
// Information Hiding:
// - Turn lifecycle and single-active-turn enforcement hidden
// - Error classification applied only at this edge
// - Pin policy application on user input encapsulated

package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/SyntheticAutonomicMind/SAM-sub003/conversation"
	"github.com/SyntheticAutonomicMind/SAM-sub003/llm"
	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
	"github.com/SyntheticAutonomicMind/SAM-sub003/speech"
	"github.com/SyntheticAutonomicMind/SAM-sub003/stream"
)

// ErrTurnActive is returned when Send is called while a stream loop
// is already running for this conversation.
var ErrTurnActive = errors.New("a turn is already streaming")

// TurnResult summarizes one completed turn.
type TurnResult struct {
	MessageID string
	Response  string
	Steps     int
	Usage     *model.TokenUsage

	// Notice carries the user-facing notification for failed turns.
	Notice string

	// Cancelled reports a silent rollback, not an error.
	Cancelled bool
}

// Engine owns the conversation loop for one conversation scope.
// At most one turn streams at a time.
type Engine struct {
	store    conversation.Store
	builder  *conversation.Builder
	provider llm.Provider
	speech   speech.Queue
	logger   zerolog.Logger

	scope    string
	throttle time.Duration
	active   atomic.Bool

	onUpdate stream.UpdateFunc
	onStatus func(stream.Status)
	onImages func(stream.ImageDisplay)

	mu            sync.Mutex
	pendingPrompt *stream.UserInputRequest
	totalUsage    model.TokenUsage
}

// New creates an engine for one conversation.
func New(store conversation.Store, builder *conversation.Builder, provider llm.Provider, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		builder:  builder,
		provider: provider,
		speech:   speech.NopQueue{},
		logger:   logger,
		scope:    "default",
		throttle: stream.DefaultThrottleInterval,
	}
}

// WithScope sets the conversation scope used for memory retrieval.
func (e *Engine) WithScope(scope string) *Engine {
	e.scope = scope
	return e
}

// WithSpeech routes sentence units to a speech queue.
func (e *Engine) WithSpeech(q speech.Queue) *Engine {
	if q != nil {
		e.speech = q
	}
	return e
}

// WithThrottleInterval overrides the update coalescing window.
func (e *Engine) WithThrottleInterval(interval time.Duration) *Engine {
	e.throttle = interval
	return e
}

// WithUpdateHandler observes coalesced content updates.
func (e *Engine) WithUpdateHandler(fn stream.UpdateFunc) *Engine {
	e.onUpdate = fn
	return e
}

// WithStatusHandler observes processing status transitions.
func (e *Engine) WithStatusHandler(fn func(stream.Status)) *Engine {
	e.onStatus = fn
	return e
}

// WithImageHandler receives image display events.
func (e *Engine) WithImageHandler(fn func(stream.ImageDisplay)) *Engine {
	e.onImages = fn
	return e
}

// Send runs one turn with the given user input. Returns ErrTurnActive
// if a turn is already streaming.
func (e *Engine) Send(ctx context.Context, text string) (TurnResult, error) {
	return e.send(ctx, text, false)
}

// RespondToToolPrompt submits the human response to a pending
// collaboration pause. The response is always pinned.
func (e *Engine) RespondToToolPrompt(ctx context.Context, text string) (TurnResult, error) {
	e.mu.Lock()
	e.pendingPrompt = nil
	e.mu.Unlock()
	return e.send(ctx, text, true)
}

// PendingPrompt returns the unanswered human-input request, if any.
func (e *Engine) PendingPrompt() *stream.UserInputRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingPrompt
}

// Usage returns cumulative token usage across turns.
func (e *Engine) Usage() model.TokenUsage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalUsage
}

// streamOutcome carries the provider goroutine's result.
type streamOutcome struct {
	usage *model.TokenUsage
	err   error
}

func (e *Engine) send(ctx context.Context, text string, collaborationResponse bool) (TurnResult, error) {
	if !e.active.CompareAndSwap(false, true) {
		return TurnResult{}, ErrTurnActive
	}
	defer e.active.Store(false)

	history, err := e.store.Messages(ctx)
	if err != nil {
		return TurnResult{}, err
	}

	userMsg := model.NewMessage(model.RoleUser, text)
	userMsg.Importance = conversation.ScoreImportance(userMsg)
	if conversation.ShouldPinUserMessage(countUserMessages(history), collaborationResponse) {
		userMsg = userMsg.Pinned()
	}
	if err := e.store.AddMessage(ctx, userMsg); err != nil {
		return TurnResult{}, err
	}
	history = append(history, userMsg)

	window := e.builder.Build(ctx, history, nil, len(history), text, e.scope)

	assistant := model.NewStreamingMessage(model.RoleAssistant)
	assistant.Importance = conversation.ScoreImportance(assistant)
	if err := e.store.AddMessage(ctx, assistant); err != nil {
		return TurnResult{}, err
	}

	chunks := make(chan model.StreamChunk, 64)
	outcomeCh := make(chan streamOutcome, 1)
	go func() {
		defer close(chunks)
		usage, err := e.provider.StreamChat(ctx, llm.FromWindow(window.SystemPreamble, window.Messages), chunks)
		outcomeCh <- streamOutcome{usage: usage, err: err}
	}()

	processor := stream.NewProcessor(e.store, e.logger).
		WithSpeech(e.speech).
		WithThrottleInterval(e.throttle).
		WithUpdateHandler(e.onUpdate).
		WithStatusHandler(e.onStatus).
		WithControlHandler(e.handleControl)

	res := processor.Consume(ctx, assistant.ID, chunks)
	outcome := <-outcomeCh

	if res.Cancelled || stream.Classify(outcome.err) == stream.ErrorCancelled {
		e.logger.Debug().Str("message_id", assistant.ID).Msg("turn cancelled, state rolled back")
		return TurnResult{MessageID: assistant.ID, Cancelled: true}, nil
	}

	if outcome.err != nil {
		return e.failTurn(assistant.ID, res, outcome.err)
	}

	usage := outcome.usage
	if usage == nil {
		usage = estimateUsage(res.Response)
	}
	_ = e.store.CompleteStreamingMessage(context.Background(), assistant.ID, usage)

	e.mu.Lock()
	e.totalUsage.Add(*usage)
	e.mu.Unlock()

	return TurnResult{
		MessageID: assistant.ID,
		Response:  res.Response,
		Steps:     res.Steps,
		Usage:     usage,
	}, nil
}

// failTurn applies the error taxonomy once, after the stream loop has
// exited. Partial content already delivered stays in place.
func (e *Engine) failTurn(messageID string, res stream.Result, streamErr error) (TurnResult, error) {
	ctx := context.Background()
	status := model.ToolError
	notice := ""

	switch stream.Classify(streamErr) {
	case stream.ErrorContextOverflow:
		e.logger.Error().Err(streamErr).Msg("context overflow")
		notice = stream.OverflowNotice
	default:
		e.logger.Error().Err(streamErr).Msg("stream failed")
		notice = stream.GenericNotice
		content := res.Response
		if content != "" {
			content += "\n\n"
		}
		content += stream.GenericNotice
		_ = e.store.UpdateMessage(ctx, messageID, conversation.MessageUpdate{Content: &content})
	}

	_ = e.store.UpdateMessage(ctx, messageID, conversation.MessageUpdate{ToolStatus: &status})
	_ = e.store.CompleteStreamingMessage(ctx, messageID, nil)

	return TurnResult{
		MessageID: messageID,
		Response:  res.Response,
		Steps:     res.Steps,
		Notice:    notice,
	}, streamErr
}

// handleControl dispatches control event side effects.
func (e *Engine) handleControl(event stream.ControlEvent) {
	switch event.Type {
	case stream.EventUserInputRequired:
		if event.UserInput == nil {
			return
		}
		e.mu.Lock()
		e.pendingPrompt = event.UserInput
		e.mu.Unlock()

		prompt := model.NewMessage(model.RoleSystemStatus, event.UserInput.Prompt)
		prompt.ToolStatus = model.ToolAwaitingInput
		_ = e.store.AddMessage(context.Background(), prompt.Pinned())
	case stream.EventImageDisplay:
		if event.Image != nil && e.onImages != nil {
			e.onImages(*event.Image)
		}
	}
}

func countUserMessages(history []model.Message) int {
	n := 0
	for _, msg := range history {
		if msg.Role == model.RoleUser {
			n++
		}
	}
	return n
}

// estimateUsage approximates completion tokens from the response
// buffer when the backend reports no usage.
func estimateUsage(response string) *model.TokenUsage {
	completion := uint32(len(response) / 4)
	return &model.TokenUsage{
		CompletionTokens: completion,
		TotalTokens:      completion,
	}
}
