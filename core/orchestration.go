// Package orchestration runs chat calls against a streaming model and turns
// each reply into ordered events for the avatar front end.
package orchestration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jimli1231/eletron-vrm/core/conversations"
	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/jimli1231/eletron-vrm/core/llms/gemini"
	"github.com/jimli1231/eletron-vrm/core/reply"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Session owns one conversation. At most one call streams at a time,
// independent conversations need independent sessions.
type Session struct {
	apiKey    string
	transport llms.Transport
	history   *conversations.History

	model             string
	systemInstruction string
	chunkTimeout      time.Duration
	newCallID         func() string

	eventHandlers  []func(events.Event)
	callbacks      callbacks
	actionHandlers map[string]ActionHandler
	emit           eventEmitter

	mu     sync.Mutex
	state  State
	active *activeCall
}

// NewSession creates a session using the Gemini streaming API. apiKey is
// only checked when a call starts, so a missing key surfaces as a failed call
// rather than a construction error.
func NewSession(apiKey string, opts ...SessionOption) *Session {
	s := &Session{
		apiKey:            apiKey,
		history:           conversations.NewHistory(),
		systemInstruction: reply.DefaultInstruction(),
		chunkTimeout:      defaultChunkTimeout,
		newCallID:         uuid.NewString,
		actionHandlers:    map[string]ActionHandler{},
		state:             StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.transport == nil {
		s.transport = gemini.NewClient(apiKey)
	}

	emitters := []eventEmitter{newCallbackEventEmitter(s.callbacks)}
	for _, handler := range s.eventHandlers {
		emitters = append(emitters, eventEmitter(handler))
	}
	s.emit = chain(emitters...)

	return s
}

// StartCall sends text as the next user turn and streams the reply.
//
// StartCall blocks until the call completes or fails and delivers every
// event on the calling goroutine. It returns ErrCallInFlight without
// emitting anything when another call is streaming, otherwise it returns the
// error the call failed with, which is also emitted as CallFailed.
func (s *Session) StartCall(ctx context.Context, text string) error {
	call, err := s.begin(ctx, text)
	if err != nil {
		callCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcomeRejected))))
		logger.WarnContext(ctx, "call rejected", "error", err)
		return err
	}
	defer s.finish(call)

	return call.run()
}

func (s *Session) begin(ctx context.Context, text string) (*activeCall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, ErrCallInFlight
	}

	call := newActiveCall(ctx, s.newCallID(), text, callComponents{
		apiKey:       s.apiKey,
		transport:    s.transport,
		history:      s.history,
		model:        s.model,
		instruction:  s.systemInstruction,
		chunkTimeout: s.chunkTimeout,
		emit:         s.emit,
		dispatch:     s.dispatchAction,
	})
	s.active = call
	s.state = StateStreaming
	return call, nil
}

func (s *Session) finish(call *activeCall) {
	call.cancel(nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == call {
		s.active = nil
	}
	s.state = StateIdle
}

// Cancel aborts the call in flight, if any. The call fails with
// ErrCallCancelled and no model turn is recorded. Events already delivered
// are not retracted.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.cancel(ErrCallCancelled)
	}
}

// ClearHistory empties the transcript. A call in flight keeps streaming but
// its reply is not recorded into the cleared transcript.
func (s *Session) ClearHistory() {
	s.history.Clear()
}

// History returns a read-only snapshot of the transcript, oldest first.
func (s *Session) History() []llms.Turn {
	return s.history.Snapshot()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
