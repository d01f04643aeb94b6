// Package jsonscan holds the small, allocation-light scanners used to pick
// string fields out of JSON text that is still being streamed in.
//
// None of the functions here require a syntactically complete document. They
// either confirm a match, refute it, or report that the buffer ended before a
// decision was possible so the caller can retry once more text arrives.
package jsonscan

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

// FindStringValue looks for `"key"` at or after from, followed by optional
// whitespace, a colon, optional whitespace and an opening quote.
//
// On a match it returns the offset of the key's opening quote and the offset
// of the first byte of the string value. When buf ends before a match can be
// confirmed, ok is false and keyAt is the offset the search should resume
// from once buf has grown.
func FindStringValue(buf, key string, from int) (keyAt, valueAt int, ok bool) {
	quoted := `"` + key + `"`
	for from <= len(buf) {
		i := strings.Index(buf[from:], quoted)
		if i < 0 {
			// A trailing partial key has to be rescanned next time.
			return len(buf) - partialKey(buf[from:], quoted), -1, false
		}

		at := from + i
		pos := skipSpace(buf, at+len(quoted))
		if pos == len(buf) {
			return at, -1, false
		}
		if buf[pos] != ':' {
			from = at + 1
			continue
		}
		pos = skipSpace(buf, pos+1)
		if pos == len(buf) {
			return at, -1, false
		}
		if buf[pos] != '"' {
			from = at + 1
			continue
		}
		return at, pos + 1, true
	}
	return from, -1, false
}

// StringEnd returns the offset of the quote closing the escaped string
// content starting at start, or -1 if buf ends first.
func StringEnd(buf string, start int) int {
	for pos := start; pos < len(buf); pos++ {
		switch buf[pos] {
		case '\\':
			pos++
		case '"':
			return pos
		}
	}
	return -1
}

// Unescape decodes complete escaped JSON string content (without the
// surrounding quotes).
func Unescape(raw string) (string, error) {
	if strings.IndexByte(raw, '\\') < 0 {
		return raw, nil
	}
	out, err := jsonparser.Unescape([]byte(raw), nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodePrefix decodes as much of the escaped string content in raw as is
// already unambiguous. It stops at the closing quote, before an escape
// sequence that is cut off by the end of raw, or before a trailing partial
// UTF-8 sequence.
//
// consumed counts the raw bytes used, including the closing quote when closed
// is true. Malformed but complete escapes decode to U+FFFD.
func DecodePrefix(raw string) (text string, consumed int, closed bool) {
	var sb strings.Builder
	pos := 0
	for pos < len(raw) {
		i := strings.IndexAny(raw[pos:], `"\`)
		if i < 0 {
			run := completeRunes(raw[pos:])
			sb.WriteString(run)
			return sb.String(), pos + len(run), false
		}

		sb.WriteString(raw[pos : pos+i])
		pos += i
		if raw[pos] == '"' {
			return sb.String(), pos + 1, true
		}

		n := escapeLen(raw[pos:])
		if n == 0 {
			break
		}
		if decoded, err := jsonparser.Unescape([]byte(raw[pos:pos+n]), nil); err != nil {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(decoded)
		}
		pos += n
	}
	return sb.String(), pos, false
}

// escapeLen returns the length of the escape sequence at the start of s, or 0
// when s ends before the sequence does.
func escapeLen(s string) int {
	if len(s) < 2 {
		return 0
	}
	if s[1] != 'u' {
		return 2
	}
	if len(s) < 6 {
		return 0
	}

	code, err := strconv.ParseUint(s[2:6], 16, 16)
	if err != nil || code < 0xD800 || code > 0xDBFF {
		return 6
	}

	// High surrogate: the low half may still be on its way.
	switch {
	case len(s) == 6:
		return 0
	case s[6] != '\\':
		return 6
	case len(s) == 7:
		return 0
	case s[7] != 'u':
		return 6
	case len(s) < 12:
		return 0
	}
	return 12
}

func completeRunes(s string) string {
	for cut := 1; cut < utf8.UTFMax && cut <= len(s); cut++ {
		b := s[len(s)-cut]
		if b < utf8.RuneSelf {
			return s
		}
		if utf8.RuneStart(b) {
			if utf8.FullRuneInString(s[len(s)-cut:]) {
				return s
			}
			return s[:len(s)-cut]
		}
	}
	return s
}

// partialKey returns the length of the longest suffix of s that is a proper
// prefix of quoted.
func partialKey(s, quoted string) int {
	for n := min(len(s), len(quoted)-1); n > 0; n-- {
		if strings.HasSuffix(s, quoted[:n]) {
			return n
		}
	}
	return 0
}

func skipSpace(buf string, pos int) int {
	for pos < len(buf) {
		switch buf[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}
