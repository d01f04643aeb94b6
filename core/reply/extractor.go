package reply

import (
	"cmp"
	"slices"

	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/internal/jsonscan"
)

// Extractor emits speech deltas and emotion changes from a reply document
// that is still being generated.
//
// Only members of the root object are tracked, fields of the same name
// nested inside the action are not. Each tracked field owns a cursor, so
// text that has already been handled is never scanned or emitted again. An
// Extractor belongs to a single call and is not safe for concurrent use.
type Extractor struct {
	callID  string
	members jsonscan.Members
	speech  *stringCursor
	emotion *scalarCursor
}

func NewExtractor(callID string) *Extractor {
	return &Extractor{
		callID:  callID,
		speech:  newStringCursor(SpeechField),
		emotion: newScalarCursor(EmotionField),
	}
}

// Feed inspects the document as it stands now and returns the events its
// newly appended text produced, in document order. doc must be the same
// document passed to previous calls with zero or more bytes appended.
func (e *Extractor) Feed(doc string) []events.Event {
	type tagged struct {
		offset int
		event  events.Event
	}

	for {
		member, ok := e.members.Next(doc)
		if !ok {
			break
		}
		switch member.Key {
		case e.speech.key:
			e.speech.locate(member.ValueAt)
		case e.emotion.key:
			e.emotion.locate(member.ValueAt)
		}
	}

	var found []tagged
	if u, ok := e.speech.advance(doc); ok {
		found = append(found, tagged{u.offset, events.NewSpeechDelta(e.callID, u.text)})
	}
	for _, u := range e.emotion.advance(doc) {
		found = append(found, tagged{u.offset, events.NewEmotionChanged(e.callID, u.text)})
	}
	if len(found) == 0 {
		return nil
	}

	slices.SortStableFunc(found, func(a, b tagged) int { return cmp.Compare(a.offset, b.offset) })
	out := make([]events.Event, len(found))
	for i, f := range found {
		out[i] = f.event
	}
	return out
}

// Speech returns all speech text emitted so far.
func (e *Extractor) Speech() string {
	return e.speech.value()
}

// Emotion returns the last emitted emotion, or an empty string if none was
// emitted yet.
func (e *Extractor) Emotion() Emotion {
	return Emotion(e.emotion.last)
}
