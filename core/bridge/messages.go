package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/llms"
)

// Channels pushed to the renderer.
const (
	ChannelStart       = "llm:start"
	ChannelSpeechDelta = "llm:speech-delta"
	ChannelEmotion     = "llm:emotion"
	ChannelAction      = "llm:action"
	ChannelError       = "llm:error"
	ChannelEnd         = "llm:end"
)

// Channels accepted from the renderer. ChannelHistory is also used for the
// reply.
const (
	ChannelSend    = "chat:send"
	ChannelClear   = "chat:clear"
	ChannelCancel  = "chat:cancel"
	ChannelHistory = "chat:history"
)

// Message is the frame exchanged with the renderer in both directions.
type Message struct {
	Channel string          `json:"channel"`
	CallID  string          `json:"callId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ActionPayload struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

type EndPayload struct {
	Speech  string `json:"speech"`
	Emotion string `json:"emotion,omitempty"`
}

func newMessage(channel, callID string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("error marshalling %s payload: %w", channel, err)
	}
	return Message{Channel: channel, CallID: callID, Payload: raw}, nil
}

// toMessage maps an event to the renderer channel that carries it. ok is
// false for events the renderer has no channel for.
func toMessage(event events.Event) (message Message, ok bool, err error) {
	switch typedEvent := event.(type) {
	case events.CallStarted:
		message, err = newMessage(ChannelStart, event.CallID(), typedEvent.Prompt)
	case events.SpeechDelta:
		message, err = newMessage(ChannelSpeechDelta, event.CallID(), typedEvent.Text)
	case events.EmotionChanged:
		message, err = newMessage(ChannelEmotion, event.CallID(), typedEvent.Emotion)
	case events.ActionRequested:
		message, err = newMessage(ChannelAction, event.CallID(), ActionPayload{Tool: typedEvent.Tool, Args: typedEvent.Args})
	case events.CallFailed:
		message, err = newMessage(ChannelError, event.CallID(), typedEvent.Reason)
	case events.CallEnded:
		message, err = newMessage(ChannelEnd, event.CallID(), EndPayload{Speech: typedEvent.Speech, Emotion: typedEvent.Emotion})
	default:
		return Message{}, false, nil
	}
	return message, err == nil, err
}

func historyMessage(turns []llms.Turn) (Message, error) {
	if turns == nil {
		turns = []llms.Turn{}
	}
	return newMessage(ChannelHistory, "", turns)
}
