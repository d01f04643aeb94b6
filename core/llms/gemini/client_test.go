package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/tidwall/gjson"
)

func TestPromptWithStreamSendsHistoryAndDirective(t *testing.T) {
	var (
		gotPath   string
		gotKey    string
		gotQuery  string
		gotBody   string
		wireReply = envelope(`{"speech":"ok","emotion":"NEUTRAL"}`)
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get(apiKeyHeader)
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, wireReply)
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL+"/"), WithTemperature(0.5))
	request := llms.NewRequest(
		[]llms.Turn{llms.NewUserTurn("Hello"), llms.NewModelTurn("I heard you")},
		"How are you?",
		llms.WithSystemInstruction("respond in JSON"),
	)

	stream, err := client.PromptWithStream(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw strings.Builder
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		raw.Write(chunk)
	}

	if raw.String() != wireReply {
		t.Fatalf("expected raw body to be passed through unchanged, got %q", raw.String())
	}
	if gotPath != "/"+DefaultModel+":streamGenerateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if strings.Contains(gotQuery, "secret") {
		t.Fatalf("api key leaked into the query string: %q", gotQuery)
	}

	roles := gjson.Get(gotBody, "contents.#.role").Array()
	texts := gjson.Get(gotBody, "contents.#.parts.0.text").Array()
	expectedRoles := []string{"user", "model", "user"}
	expectedTexts := []string{"Hello", "I heard you", "How are you?"}
	if len(roles) != 3 || len(texts) != 3 {
		t.Fatalf("expected 3 contents, got body %s", gotBody)
	}
	for i := range expectedRoles {
		if roles[i].String() != expectedRoles[i] || texts[i].String() != expectedTexts[i] {
			t.Fatalf("unexpected content %d: role=%q text=%q", i, roles[i].String(), texts[i].String())
		}
	}
	if got := gjson.Get(gotBody, "systemInstruction.parts.0.text").String(); got != "respond in JSON" {
		t.Fatalf("unexpected system instruction %q", got)
	}
	if got := gjson.Get(gotBody, "generationConfig.responseMimeType").String(); got != "application/json" {
		t.Fatalf("unexpected response mime type %q", got)
	}
	if got := gjson.Get(gotBody, "generationConfig.temperature").Float(); got != 0.5 {
		t.Fatalf("unexpected temperature %v", got)
	}
}

func TestPromptWithStreamRequiresAPIKey(t *testing.T) {
	client := NewClient("")
	_, err := client.PromptWithStream(context.Background(), llms.NewRequest(nil, "hi"))
	if !errors.Is(err, llms.ErrMissingAPIKey) {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestChunksReportsNonOKStatusWithBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"API key not valid"}}`)
	}))
	defer server.Close()

	client := NewClient("bad", WithBaseURL(server.URL))
	stream, err := client.PromptWithStream(context.Background(), llms.NewRequest(nil, "hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var errs []error
	for chunk, err := range stream.Chunks(context.Background()) {
		if chunk != nil {
			t.Fatalf("expected no chunks, got %q", chunk)
		}
		errs = append(errs, err)
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(errs))
	}

	var transportErr *llms.TransportError
	if !errors.As(errs[0], &transportErr) {
		t.Fatalf("expected transport error, got %T", errs[0])
	}
	if transportErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", transportErr.StatusCode)
	}
	if !strings.Contains(transportErr.Error(), "API key not valid") {
		t.Fatalf("expected error body in message, got %q", transportErr.Error())
	}
}

func TestChunksRespectsReadSize(t *testing.T) {
	payload := strings.Repeat("x", 100)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithReadSize(8))
	stream, err := client.PromptWithStream(context.Background(), llms.NewRequest(nil, "hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var total int
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunk) > 8 {
			t.Fatalf("chunk larger than read size: %d", len(chunk))
		}
		total += len(chunk)
	}
	if total != len(payload) {
		t.Fatalf("expected %d bytes, got %d", len(payload), total)
	}
}

func TestChunksStopsWhenConsumerStops(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("y", 64))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithReadSize(4))
	stream, _ := client.PromptWithStream(context.Background(), llms.NewRequest(nil, "hi"))

	seen := 0
	for range stream.Chunks(context.Background()) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected iteration to stop after the first chunk, got %d", seen)
	}
}
