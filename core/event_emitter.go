package orchestration

import (
	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/reply"
)

type eventEmitter func(events.Event)

func newCallbackEventEmitter(callbacks callbacks) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.CallStarted:
			if callbacks.onCallStarted != nil {
				callbacks.onCallStarted(typedEvent.Prompt)
			}
		case events.SpeechDelta:
			if callbacks.onSpeechDelta != nil {
				callbacks.onSpeechDelta(typedEvent.Text)
			}
		case events.EmotionChanged:
			if callbacks.onEmotionChange != nil {
				callbacks.onEmotionChange(reply.Emotion(typedEvent.Emotion))
			}
		case events.ActionRequested:
			if callbacks.onAction != nil {
				callbacks.onAction(typedEvent.Tool, typedEvent.Args)
			}
		case events.CallFailed:
			if callbacks.onError != nil {
				callbacks.onError(typedEvent.Err)
			}
		case events.CallEnded:
			if callbacks.onEnd != nil {
				callbacks.onEnd(typedEvent.Speech)
			}
		}
	}
}

// chain calls every emitter in order.
func chain(emitters ...eventEmitter) eventEmitter {
	return func(event events.Event) {
		for _, emit := range emitters {
			emit(event)
		}
	}
}
