package reply

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

var (
	ErrMalformedReply  = errors.New("malformed reply document")
	ErrMalformedAction = errors.New("malformed action")
)

// Finalize parses the complete reply document once and returns its action.
//
// A nil action with a nil error means the document has no action. Code
// fences around the document are ignored. A document that is not valid JSON
// never yields an action, even when it can be repaired, since a truncated
// reply may carry a cut off tool or cut off arguments. Errors are never
// fatal to the call that produced the document, they only mean that no
// action can be trusted.
func Finalize(document string) (*Action, error) {
	doc := stripFences(document)
	if !gjson.Valid(doc) {
		return nil, rejectInvalid(doc)
	}

	root := gjson.Parse(doc)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrMalformedReply, root.Type)
	}

	action := root.Get(ActionField)
	if !action.Exists() || action.Type == gjson.Null {
		return nil, nil
	}
	if !action.IsObject() {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrMalformedAction, action.Type)
	}

	tool := action.Get("tool")
	if tool.Type != gjson.String || strings.TrimSpace(tool.Str) == "" {
		return nil, fmt.Errorf("%w: missing tool", ErrMalformedAction)
	}

	args := map[string]any{}
	if rawArgs := action.Get("args"); rawArgs.IsObject() {
		if decoded, ok := rawArgs.Value().(map[string]any); ok {
			args = decoded
		}
	}
	return &Action{Tool: tool.Str, Args: args}, nil
}

// rejectInvalid explains why an invalid document was rejected. The repaired
// text is only inspected to report what was lost.
func rejectInvalid(doc string) error {
	repaired, err := jsonrepair.JSONRepair(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	if tool := gjson.Get(repaired, ActionField+".tool"); tool.Exists() {
		logger.Warn("dropping action from a reply that needed repair", "tool", tool.String())
		return fmt.Errorf("%w: action %q dropped from incomplete document", ErrMalformedReply, tool.String())
	}
	return fmt.Errorf("%w: incomplete document", ErrMalformedReply)
}

// stripFences removes a Markdown code fence wrapped around the document,
// with or without a language tag.
func stripFences(document string) string {
	doc := strings.TrimSpace(document)
	if !strings.HasPrefix(doc, "```") {
		return doc
	}

	doc = strings.TrimPrefix(doc, "```")
	if newline := strings.IndexByte(doc, '\n'); newline >= 0 {
		doc = doc[newline+1:]
	} else {
		// Single line fence, e.g. ```json {...}```
		doc = strings.TrimPrefix(doc, "json")
	}
	doc = strings.TrimSuffix(strings.TrimSpace(doc), "```")
	return strings.TrimSpace(doc)
}
