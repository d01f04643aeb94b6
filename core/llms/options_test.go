package llms

import (
	"errors"
	"io"
	"testing"
)

func TestNewRequestAppendsPromptAsFinalTurn(t *testing.T) {
	history := []Turn{NewUserTurn("Hello"), NewModelTurn("I heard you")}

	request := NewRequest(history, "How are you?", WithSystemInstruction("be nice"))

	expected := []Turn{
		{Role: RoleUser, Text: "Hello"},
		{Role: RoleModel, Text: "I heard you"},
		{Role: RoleUser, Text: "How are you?"},
	}
	if len(request.Turns) != len(expected) {
		t.Fatalf("expected %d turns, got %d", len(expected), len(request.Turns))
	}
	for i, turn := range expected {
		if request.Turns[i] != turn {
			t.Fatalf("unexpected turn %d: %+v", i, request.Turns[i])
		}
	}
	if request.ResponseFormat != ResponseFormatJSON {
		t.Fatalf("expected json response format, got %q", request.ResponseFormat)
	}
	if request.SystemInstruction != "be nice" {
		t.Fatalf("expected system instruction to be set, got %q", request.SystemInstruction)
	}
}

func TestNewRequestDoesNotAliasHistory(t *testing.T) {
	history := make([]Turn, 1, 4)
	history[0] = NewUserTurn("first")

	request := NewRequest(history, "second")
	history = append(history, NewModelTurn("late"))

	if request.Turns[1].Text != "second" {
		t.Fatalf("request turns were overwritten by history append: %+v", request.Turns)
	}
	if len(history) != 2 {
		t.Fatalf("unexpected history length %d", len(history))
	}
}

func TestTransportErrorMessages(t *testing.T) {
	withBody := &TransportError{StatusCode: 403, Status: "403 Forbidden", Body: `{"error":"denied"}`}
	if got := withBody.Error(); got != `API Error (403): {"error":"denied"}` {
		t.Fatalf("unexpected message %q", got)
	}

	unreadable := &TransportError{StatusCode: 500, BodyErr: io.ErrUnexpectedEOF}
	if got := unreadable.Error(); got != "API Error (500) - Could not read body" {
		t.Fatalf("unexpected message %q", got)
	}

	midStream := &TransportError{Err: io.ErrUnexpectedEOF}
	if !errors.Is(midStream, io.ErrUnexpectedEOF) {
		t.Fatalf("expected mid-stream error to unwrap")
	}
}
