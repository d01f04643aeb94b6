package llms

import "slices"

type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json"
)

// Request is the provider neutral shape of an outbound call.
type Request struct {
	// Model overrides the transport's default model when set.
	Model string
	// Turns is the prior history followed by the new user turn as the final
	// entry.
	Turns             []Turn
	SystemInstruction string
	ResponseFormat    ResponseFormat
}

type RequestOption func(*Request)

// NewRequest builds a request from a history snapshot and the new prompt.
// The snapshot is copied, so later history mutations never leak into a
// request that is already built.
func NewRequest(history []Turn, prompt string, opts ...RequestOption) Request {
	turns := slices.Grow(slices.Clone(history), 1)
	request := Request{
		Turns:          append(turns, NewUserTurn(prompt)),
		ResponseFormat: ResponseFormatJSON,
	}
	for _, opt := range opts {
		opt(&request)
	}
	return request
}

func WithModel(model string) RequestOption {
	return func(r *Request) { r.Model = model }
}

// WithSystemInstruction sets the directive describing the output shape.
// Repeating this option overwrites the previous instruction.
func WithSystemInstruction(instruction string) RequestOption {
	return func(r *Request) { r.SystemInstruction = instruction }
}

func WithResponseFormat(format ResponseFormat) RequestOption {
	return func(r *Request) { r.ResponseFormat = format }
}
