package jsonscan

// Member is a member of the root object whose value is a string.
type Member struct {
	Key string
	// ValueAt is the offset of the first byte of the escaped string value.
	ValueAt int
}

type expect int

const (
	expectNothing expect = iota
	expectKey
	expectColon
	expectValue
)

// Members walks a growing JSON document and reports the string-valued
// members of its root object, skipping anything nested deeper. The document
// passed to Next must be the one passed before with zero or more bytes
// appended.
type Members struct {
	pos   int
	depth int

	inString bool
	stringAt int
	isKey    bool

	key    string
	expect expect
}

// Next advances through buf and returns the next root member whose string
// value has started. ok is false once buf is exhausted.
func (m *Members) Next(buf string) (member Member, ok bool) {
	for m.pos < len(buf) {
		c := buf[m.pos]

		if m.inString {
			switch c {
			case '\\':
				if m.pos+1 >= len(buf) {
					return Member{}, false
				}
				m.pos += 2
				continue
			case '"':
				m.inString = false
				if m.isKey {
					m.key = buf[m.stringAt:m.pos]
					m.expect = expectColon
				}
			}
			m.pos++
			continue
		}

		switch c {
		case ' ', '\t', '\n', '\r':
		case '"':
			m.inString = true
			m.stringAt = m.pos + 1
			m.isKey = m.depth == 1 && m.expect == expectKey
			if m.depth == 1 && m.expect == expectValue {
				m.expect = expectNothing
				m.pos++
				return Member{Key: m.keyText(), ValueAt: m.pos}, true
			}
		case '{', '[':
			m.depth++
			switch {
			case m.depth == 1 && c == '{':
				m.expect = expectKey
			case m.depth == 2:
				m.expect = expectNothing
			}
		case '}', ']':
			m.depth--
		case ',':
			if m.depth == 1 {
				m.expect = expectKey
			}
		case ':':
			if m.depth == 1 && m.expect == expectColon {
				m.expect = expectValue
			}
		default:
			if m.depth == 1 && m.expect == expectValue {
				m.expect = expectNothing
			}
		}
		m.pos++
	}
	return Member{}, false
}

func (m *Members) keyText() string {
	key, err := Unescape(m.key)
	if err != nil {
		return m.key
	}
	return key
}
