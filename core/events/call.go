package events

const (
	// KindCallStarted identifies an accepted call.
	KindCallStarted Kind = "call.started"
	// KindCallFailed identifies a failed call.
	KindCallFailed Kind = "call.failed"
	// KindCallEnded identifies a completed call.
	KindCallEnded Kind = "call.ended"
)

// CallStarted marks a call that passed the single-flight check. Every
// accepted call ends with exactly one CallEnded or CallFailed.
type CallStarted struct {
	Base
	Prompt string
}

// NewCallStarted creates a call started event.
func NewCallStarted(callID, prompt string) CallStarted {
	return CallStarted{Base: NewBase(KindCallStarted, callID), Prompt: prompt}
}

// CallFailed reports why a call terminated early.
type CallFailed struct {
	Base
	Reason string
	Err    error
}

// NewCallFailed creates a call failed event.
func NewCallFailed(callID string, err error) CallFailed {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return CallFailed{Base: NewBase(KindCallFailed, callID), Reason: reason, Err: err}
}

// CallEnded marks successful completion of a call.
type CallEnded struct {
	Base
	// Speech is the full speech text streamed during the call.
	Speech string
	// Emotion is the last emitted emotion label, empty if none was seen.
	Emotion string
}

// NewCallEnded creates a call ended event.
func NewCallEnded(callID, speech, emotion string) CallEnded {
	return CallEnded{Base: NewBase(KindCallEnded, callID), Speech: speech, Emotion: emotion}
}
