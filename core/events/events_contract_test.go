package events

import (
	"errors"
	"testing"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "speech delta", event: NewSpeechDelta("call", "seg"), expected: KindSpeechDelta},
		{name: "emotion changed", event: NewEmotionChanged("call", "JOY"), expected: KindEmotionChanged},
		{name: "action requested", event: NewActionRequested("call", "type_text", nil), expected: KindActionRequested},
		{name: "call started", event: NewCallStarted("call", "hello"), expected: KindCallStarted},
		{name: "call failed", event: NewCallFailed("call", errors.New("boom")), expected: KindCallFailed},
		{name: "call ended", event: NewCallEnded("call", "hi", "JOY"), expected: KindCallEnded},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if got := testCase.event.CallID(); got != "call" {
				t.Fatalf("expected call id %q, got %q", "call", got)
			}
			if testCase.event.Timestamp().IsZero() {
				t.Fatalf("expected timestamp to be set")
			}
		})
	}
}

func TestActionRequestedDefaultsArgs(t *testing.T) {
	action := NewActionRequested("call", "type_text", nil)
	if action.Args == nil || len(action.Args) != 0 {
		t.Fatalf("expected empty args map, got %#v", action.Args)
	}
}

func TestCallFailedCarriesReason(t *testing.T) {
	cause := errors.New("API Error (500): boom")
	failed := NewCallFailed("call", cause)
	if failed.Reason != cause.Error() {
		t.Fatalf("expected reason %q, got %q", cause.Error(), failed.Reason)
	}
	if !errors.Is(failed.Err, cause) {
		t.Fatalf("expected wrapped error to be kept")
	}
}
