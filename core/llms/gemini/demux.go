package gemini

import (
	"context"
	"strings"

	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/jimli1231/eletron-vrm/internal/jsonscan"
)

// textKey is the field of a response part that carries generated text.
const textKey = "text"

var _ llms.Demuxer = (*Demuxer)(nil)

// Demuxer reconstructs the generated document from the raw body of a
// streamGenerateContent response, which is a JSON array (or SSE stream) of
// GenerateContentResponse objects delivered in arbitrary byte slices.
//
// Every `"text": "..."` string is unescaped and returned in order. A string
// is only emitted once its closing quote has arrived, so neither a split key
// nor a split escape sequence can produce a corrupted character. Everything
// before the last unfinished match is dropped as soon as it is consumed.
type Demuxer struct {
	pending []byte
}

func NewDemuxer() *Demuxer {
	return &Demuxer{}
}

func (d *Demuxer) Write(chunk llms.RawChunk) string {
	d.pending = append(d.pending, chunk...)
	buf := string(d.pending)

	var (
		out      strings.Builder
		consumed int
	)
	for {
		keyAt, valueAt, ok := jsonscan.FindStringValue(buf, textKey, consumed)
		if !ok {
			consumed = keyAt
			break
		}

		end := jsonscan.StringEnd(buf, valueAt)
		if end < 0 {
			consumed = keyAt
			logger.DebugContext(context.Background(), "text fragment split across chunks, retaining tail",
				"retained_bytes", len(buf)-keyAt)
			break
		}

		raw := buf[valueAt:end]
		text, err := jsonscan.Unescape(raw)
		if err != nil {
			// Complete but malformed escapes cannot be fixed by more data.
			logger.WarnContext(context.Background(), "malformed escape in text fragment, keeping raw text",
				"error", err)
			text = raw
		}
		out.WriteString(text)
		consumed = end + 1
	}

	d.pending = append(d.pending[:0], d.pending[consumed:]...)
	return out.String()
}

func (d *Demuxer) Pending() int {
	return len(d.pending)
}
