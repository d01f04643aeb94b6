// Package reply turns the document a model generates into events while it
// is still being written, and extracts the optional action once it is
// complete.
//
// The two passes are deliberately separate. Extractor works on a prefix of
// the document and never needs it to be well formed. Finalize needs the
// whole document and runs once, after the stream ends.
package reply

// Field names of the reply document.
const (
	SpeechField  = "speech"
	EmotionField = "emotion"
	ActionField  = "action"
)

type Emotion string

const (
	EmotionNeutral Emotion = "NEUTRAL"
	EmotionJoy     Emotion = "JOY"
	EmotionAngry   Emotion = "ANGRY"
	EmotionSorrow  Emotion = "SORROW"
	EmotionFun     Emotion = "FUN"
)

// Valid reports whether e is one of the labels the avatar has an expression
// for. Unknown labels are still forwarded, consumers decide how to map them.
func (e Emotion) Valid() bool {
	switch e {
	case EmotionNeutral, EmotionJoy, EmotionAngry, EmotionSorrow, EmotionFun:
		return true
	}
	return false
}

// Reply is the document the model is instructed to produce.
type Reply struct {
	Speech  string  `json:"speech" jsonschema:"title=Speech,description=The text to say to the user. Keep it natural and spoken."`
	Emotion Emotion `json:"emotion" jsonschema:"title=Emotion,description=The expression to show while speaking,enum=NEUTRAL,enum=JOY,enum=ANGRY,enum=SORROW,enum=FUN"`
	Action  *Action `json:"action,omitempty" jsonschema:"title=Action,description=An optional tool the assistant wants to run"`
}

type Action struct {
	Tool string         `json:"tool" jsonschema:"title=Tool,description=Name of the tool to run"`
	Args map[string]any `json:"args,omitempty" jsonschema:"title=Args,description=Arguments for the tool"`
}
