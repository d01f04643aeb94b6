package jsonscan

import "testing"

func TestFindStringValue(t *testing.T) {
	testCases := []struct {
		name      string
		buf       string
		from      int
		wantKeyAt int
		wantValue int
		wantOK    bool
	}{
		{name: "compact", buf: `{"speech":"hi"}`, wantKeyAt: 1, wantValue: 11, wantOK: true},
		{name: "spaced", buf: `{ "speech" :  "hi"}`, wantKeyAt: 2, wantValue: 15, wantOK: true},
		{name: "missing", buf: `{"emotion":"JOY"}`, wantKeyAt: 17, wantValue: -1, wantOK: false},
		{name: "partial key at end", buf: `{"emotion":"JOY","spe`, wantKeyAt: 17, wantValue: -1, wantOK: false},
		{name: "key without colon yet", buf: `{"speech"  `, wantKeyAt: 1, wantValue: -1, wantOK: false},
		{name: "key without quote yet", buf: `{"speech": `, wantKeyAt: 1, wantValue: -1, wantOK: false},
		{name: "value not a key", buf: `{"a":"speech","speech":"x"}`, wantKeyAt: 14, wantValue: 24, wantOK: true},
		{name: "escaped key is ignored", buf: `{"a":"\"speech\": \"no\"","speech":"yes"}`, wantKeyAt: 26, wantValue: 36, wantOK: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			keyAt, valueAt, ok := FindStringValue(testCase.buf, "speech", testCase.from)
			if ok != testCase.wantOK || keyAt != testCase.wantKeyAt || valueAt != testCase.wantValue {
				t.Fatalf("expected (%d, %d, %t), got (%d, %d, %t)",
					testCase.wantKeyAt, testCase.wantValue, testCase.wantOK, keyAt, valueAt, ok)
			}
		})
	}
}

func TestStringEndSkipsEscapedQuotes(t *testing.T) {
	buf := `say \"hi\" now" tail`
	if got := StringEnd(buf, 0); got != 14 {
		t.Fatalf("expected closing quote at 14, got %d", got)
	}
	if got := StringEnd(`unterminated \"`, 0); got != -1 {
		t.Fatalf("expected -1 for unterminated string, got %d", got)
	}
	if got := StringEnd(`dangling \`, 0); got != -1 {
		t.Fatalf("expected -1 for dangling backslash, got %d", got)
	}
}

func TestDecodePrefixStopsBeforeIncompleteEscape(t *testing.T) {
	testCases := []struct {
		name         string
		raw          string
		wantText     string
		wantConsumed int
		wantClosed   bool
	}{
		{name: "plain", raw: `hello`, wantText: "hello", wantConsumed: 5},
		{name: "closed", raw: `hello", "x"`, wantText: "hello", wantConsumed: 6, wantClosed: true},
		{name: "split backslash", raw: `a\`, wantText: "a", wantConsumed: 1},
		{name: "escaped quote", raw: `a\"b`, wantText: `a"b`, wantConsumed: 4},
		{name: "split unicode", raw: `a\u00`, wantText: "a", wantConsumed: 1},
		{name: "unicode", raw: `\u00e9t\u00e9`, wantText: "été", wantConsumed: 13},
		{name: "surrogate half", raw: `\ud83d`, wantText: "", wantConsumed: 0},
		{name: "surrogate pair", raw: `\ud83d\ude00!`, wantText: "😀!", wantConsumed: 13},
		{name: "newline", raw: `a\nb"`, wantText: "a\nb", wantConsumed: 5, wantClosed: true},
		{name: "partial rune", raw: "ok\xe4\xbd", wantText: "ok", wantConsumed: 2},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			text, consumed, closed := DecodePrefix(testCase.raw)
			if text != testCase.wantText || consumed != testCase.wantConsumed || closed != testCase.wantClosed {
				t.Fatalf("expected (%q, %d, %t), got (%q, %d, %t)",
					testCase.wantText, testCase.wantConsumed, testCase.wantClosed, text, consumed, closed)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	got, err := Unescape(`{\"speech\":\"a\\b\"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"speech":"a\b"}` {
		t.Fatalf("unexpected unescaped text %q", got)
	}

	if _, err := Unescape(`bad \x escape`); err == nil {
		t.Fatalf("expected error for malformed escape")
	}
}

func TestMembersReportsOnlyRootStringMembers(t *testing.T) {
	doc := `{"a": 1, "speech": "hi \"x\": \"y\"", "nested": {"speech": "no", "deep": [{"emotion": "no"}]}, "list": ["emotion", "x"], "emotion" : "JOY"}`

	var (
		members Members
		got     []string
	)
	// Grow the document a byte at a time to cover every split point.
	for end := 1; end <= len(doc); end++ {
		for {
			member, ok := members.Next(doc[:end])
			if !ok {
				break
			}
			got = append(got, member.Key+"@"+doc[member.ValueAt:member.ValueAt+1])
		}
	}

	expected := []string{"speech@h", "emotion@J"}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}
