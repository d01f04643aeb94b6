// Package events defines the typed event contract emitted by a session while
// it streams a reply.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - reply.*
//   - call.*
//
// reply events
//
//   - SpeechDelta (reply.speech_delta): append-only piece of the spoken text,
//     already unescaped. Concatenating every delta of a call yields the full
//     speech value.
//   - EmotionChanged (reply.emotion_changed): the emotion label differs from
//     the previously emitted one.
//   - ActionRequested (reply.action): the completed reply carried a
//     structured action. Emitted at most once per call, right before
//     CallEnded.
//
// call events
//
//   - CallStarted (call.started): the session accepted the call. Always the
//     first event of a call.
//   - CallFailed (call.failed): the call terminated with an error. Exactly one
//     per failed call and never followed by CallEnded.
//   - CallEnded (call.ended): the call completed.
//
// After CallStarted, a call produces either {SpeechDelta|EmotionChanged..., ActionRequested?,
// CallEnded} or exactly one CallFailed (possibly after deltas that were
// already delivered), never both terminals.
package events
