package events

const (
	// KindSpeechDelta identifies a streamed speech segment.
	KindSpeechDelta Kind = "reply.speech_delta"
	// KindEmotionChanged identifies an emotion label change.
	KindEmotionChanged Kind = "reply.emotion_changed"
	// KindActionRequested identifies a structured action from the reply.
	KindActionRequested Kind = "reply.action"
)

// SpeechDelta carries newly generated speech text.
type SpeechDelta struct {
	Base
	Text string
}

// NewSpeechDelta creates a speech delta event.
func NewSpeechDelta(callID, text string) SpeechDelta {
	return SpeechDelta{Base: NewBase(KindSpeechDelta, callID), Text: text}
}

// EmotionChanged carries the latest emotion label.
type EmotionChanged struct {
	Base
	Emotion string
}

// NewEmotionChanged creates an emotion changed event.
func NewEmotionChanged(callID, emotion string) EmotionChanged {
	return EmotionChanged{Base: NewBase(KindEmotionChanged, callID), Emotion: emotion}
}

// ActionRequested carries the tool the reply asked to run.
type ActionRequested struct {
	Base
	Tool string
	Args map[string]any
}

// NewActionRequested creates an action event. Nil args become an empty map.
func NewActionRequested(callID, tool string, args map[string]any) ActionRequested {
	if args == nil {
		args = map[string]any{}
	}
	return ActionRequested{Base: NewBase(KindActionRequested, callID), Tool: tool, Args: args}
}
