package reply

import (
	"strings"

	"github.com/jimli1231/eletron-vrm/internal/jsonscan"
)

// update is an event tagged with the offset in the document that produced
// it, so updates from different fields can be merged in document order.
type update struct {
	offset int
	text   string
}

// stringCursor tracks a string field whose value is emitted as it grows.
// Only the first occurrence of the field is tracked.
type stringCursor struct {
	key string

	// valueAt is the offset of the first byte of the value, -1 until the key
	// has been located.
	valueAt int
	// scanned counts the raw value bytes already decoded.
	scanned int
	closed  bool
	emitted strings.Builder
}

func newStringCursor(key string) *stringCursor {
	return &stringCursor{key: key, valueAt: -1}
}

func (c *stringCursor) locate(valueAt int) {
	if c.valueAt < 0 {
		c.valueAt = valueAt
	}
}

func (c *stringCursor) advance(doc string) (update, bool) {
	if c.closed || c.valueAt < 0 {
		return update{}, false
	}

	from := c.valueAt + c.scanned
	text, consumed, closed := jsonscan.DecodePrefix(doc[from:])
	c.scanned += consumed
	c.closed = closed
	if text == "" {
		return update{}, false
	}
	c.emitted.WriteString(text)
	return update{offset: from, text: text}, true
}

func (c *stringCursor) value() string {
	return c.emitted.String()
}

// scalarCursor tracks a field whose complete value is emitted whenever it
// differs from the last one emitted. Every occurrence of the field is
// considered, in document order.
type scalarCursor struct {
	key string

	// pending holds value offsets whose closing quote has not arrived yet.
	pending []int
	last    string
	seen    bool
}

func newScalarCursor(key string) *scalarCursor {
	return &scalarCursor{key: key}
}

func (c *scalarCursor) locate(valueAt int) {
	c.pending = append(c.pending, valueAt)
}

func (c *scalarCursor) advance(doc string) []update {
	var updates []update
	for len(c.pending) > 0 {
		valueAt := c.pending[0]
		end := jsonscan.StringEnd(doc, valueAt)
		if end < 0 {
			return updates
		}
		c.pending = c.pending[1:]

		value, err := jsonscan.Unescape(doc[valueAt:end])
		if err != nil {
			logger.Warn("malformed escape in field value, skipping", "field", c.key, "error", err)
			continue
		}
		if c.seen && value == c.last {
			continue
		}
		c.seen, c.last = true, value
		updates = append(updates, update{offset: valueAt, text: value})
	}
	return updates
}
