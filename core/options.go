package orchestration

import (
	"context"
	"time"

	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/jimli1231/eletron-vrm/core/reply"
)

const defaultChunkTimeout = 30 * time.Second

type SessionOption func(*Session)

// WithTransport replaces the default Gemini client, e.g. with a proxy aware
// client or a test double.
func WithTransport(transport llms.Transport) SessionOption {
	return func(s *Session) {
		if transport != nil {
			s.transport = transport
		}
	}
}

// WithModel overrides the transport's default model for every call.
func WithModel(model string) SessionOption {
	return func(s *Session) { s.model = model }
}

// WithSystemInstruction replaces the default reply directive. The
// instruction must still ask for the reply document, otherwise no speech or
// emotion can be extracted.
func WithSystemInstruction(instruction string) SessionOption {
	return func(s *Session) { s.systemInstruction = instruction }
}

// WithChunkTimeout sets how long a call waits for the next chunk before it
// fails with ErrChunkTimeout. Non-positive values disable the timeout.
func WithChunkTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) { s.chunkTimeout = timeout }
}

// WithHistory seeds the session with earlier turns.
func WithHistory(turns ...llms.Turn) SessionOption {
	return func(s *Session) {
		for _, turn := range turns {
			switch turn.Role {
			case llms.RoleUser:
				s.history.RecordUser(turn.Text)
			case llms.RoleModel:
				s.history.RecordModel(turn.Text)
			}
		}
	}
}

// WithCallIDGenerator replaces the UUID generator used to tag the events of
// each call.
func WithCallIDGenerator(generate func() string) SessionOption {
	return func(s *Session) {
		if generate != nil {
			s.newCallID = generate
		}
	}
}

// WithEventHandler registers a handler receiving every event of every call,
// in order. Handlers run synchronously on the goroutine that called
// StartCall, so a slow handler slows down the stream. Multiple handlers are
// called in registration order.
func WithEventHandler(handler func(events.Event)) SessionOption {
	return func(s *Session) {
		if handler != nil {
			s.eventHandlers = append(s.eventHandlers, handler)
		}
	}
}

// ActionHandler runs a tool requested by a reply. Errors are recorded but do
// not fail the call that requested the action.
type ActionHandler func(ctx context.Context, args map[string]any) error

// WithActionHandler routes actions naming tool to handler. Registering a
// tool again replaces its handler.
func WithActionHandler(tool string, handler ActionHandler) SessionOption {
	return func(s *Session) {
		if handler == nil {
			delete(s.actionHandlers, tool)
			return
		}
		s.actionHandlers[tool] = handler
	}
}

type callbacks struct {
	onCallStarted   func(prompt string)
	onSpeechDelta   func(text string)
	onEmotionChange func(emotion reply.Emotion)
	onAction        func(tool string, args map[string]any)
	onError         func(err error)
	onEnd           func(speech string)
}

// WithSpeechDeltaCallback registers a callback for newly generated speech.
func WithSpeechDeltaCallback(callback func(text string)) SessionOption {
	return func(s *Session) { s.callbacks.onSpeechDelta = callback }
}

func WithEmotionCallback(callback func(emotion reply.Emotion)) SessionOption {
	return func(s *Session) { s.callbacks.onEmotionChange = callback }
}

// WithActionCallback registers a callback for every requested action,
// whether or not a handler is registered for its tool.
func WithActionCallback(callback func(tool string, args map[string]any)) SessionOption {
	return func(s *Session) { s.callbacks.onAction = callback }
}

func WithCallStartedCallback(callback func(prompt string)) SessionOption {
	return func(s *Session) { s.callbacks.onCallStarted = callback }
}

// WithErrorCallback registers a callback for failed calls. It is called
// once per failed call.
func WithErrorCallback(callback func(err error)) SessionOption {
	return func(s *Session) { s.callbacks.onError = callback }
}

// WithEndCallback registers a callback for completed calls, receiving the
// full speech text.
func WithEndCallback(callback func(speech string)) SessionOption {
	return func(s *Session) { s.callbacks.onEnd = callback }
}
