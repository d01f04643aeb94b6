package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jimli1231/eletron-vrm/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultModel   = "gemini-2.0-flash-exp"

	defaultReadSize = 4 * 1024
	apiKeyHeader    = "x-goog-api-key"
)

var _ llms.Transport = (*Client)(nil)

type Client struct {
	apiKey      string
	baseURL     string
	model       string
	readSize    int
	temperature *float32
	httpClient  *http.Client
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint, e.g. a proxy or a
// test server. Trailing slashes are ignored.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithDefaultModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithReadSize sets the maximum size of a single raw chunk read from the
// response body.
func WithReadSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.readSize = size
		}
	}
}

func WithTemperature(temperature float32) ClientOption {
	return func(c *Client) { c.temperature = &temperature }
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		model:    DefaultModel,
		readSize: defaultReadSize,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) NewDemuxer() llms.Demuxer {
	return NewDemuxer()
}

// PromptWithStream prepares a streaming request. Nothing is sent until the
// returned stream's chunks are ranged over.
func (c *Client) PromptWithStream(_ context.Context, request llms.Request) (llms.Stream, error) {
	if c.apiKey == "" {
		return nil, llms.ErrMissingAPIKey
	}

	model := request.Model
	if model == "" {
		model = c.model
	}

	body, err := newRequestBody(request, c.temperature)
	if err != nil {
		return nil, fmt.Errorf("error building request body: %w", err)
	}
	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	return &Stream{
		client: c,
		model:  model,
		url:    fmt.Sprintf("%s/%s:streamGenerateContent", c.baseURL, model),
		body:   requestBodyBytes,
	}, nil
}

type Stream struct {
	client *Client

	model string
	url   string
	body  []byte
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.RawChunk, error) bool) {
	return func(yield func(llms.RawChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt llm stream")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.model))

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(s.body))
		if err != nil {
			fail(&llms.TransportError{Err: fmt.Errorf("error creating HTTP request: %w", err)})
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(apiKeyHeader, s.client.apiKey)
		span.SetAttributes(attribute.String("request.url", req.URL.String()))

		requestStarted := time.Now()
		span.AddEvent("request started")
		resp, err := s.client.httpClient.Do(req)
		if err != nil {
			fail(&llms.TransportError{Err: fmt.Errorf("error sending request: %w", err)})
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			transportErr := &llms.TransportError{StatusCode: resp.StatusCode, Status: resp.Status}
			if errorBody, err := io.ReadAll(resp.Body); err != nil {
				transportErr.BodyErr = fmt.Errorf("error reading error body: %w", err)
			} else {
				transportErr.Body = string(errorBody)
				span.SetAttributes(attribute.String("response.error", transportErr.Body))
			}
			transportErr.Err = fmt.Errorf("non-OK HTTP status: %s", resp.Status)
			logger.WarnContext(ctx, "gemini request rejected", "status", resp.StatusCode, "model", s.model)
			fail(transportErr)
			return
		}

		var (
			buf        = make([]byte, s.client.readSize)
			firstChunk = true
			total      int
		)
		defer func() { span.SetAttributes(attribute.Int("response.bytes", total)) }()
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				if firstChunk {
					span.SetAttributes(attribute.Float64("response.request_to_first_chunk_time", time.Since(requestStarted).Seconds()))
					span.AddEvent("received first chunk")
					firstChunk = false
				}
				total += n
				chunk := make(llms.RawChunk, n)
				copy(chunk, buf[:n])
				if !yield(chunk, nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				fail(&llms.TransportError{Err: fmt.Errorf("error reading streamed response: %w", err)})
				return
			}
		}
	}
}
