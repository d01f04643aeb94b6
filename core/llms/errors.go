package llms

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when no credential was configured.
var ErrMissingAPIKey = errors.New("missing API key")

// TransportError reports a failed request or a stream that broke while being
// read.
type TransportError struct {
	// StatusCode is zero when no response status was received.
	StatusCode int
	Status     string
	// Body is the best-effort error body returned with a non-2xx status.
	Body string
	// BodyErr is set when reading the error body failed.
	BodyErr error
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.BodyErr != nil:
		return fmt.Sprintf("API Error (%d) - Could not read body", e.StatusCode)
	case e.StatusCode != 0:
		return fmt.Sprintf("API Error (%d): %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return e.Err.Error()
	}
	return "transport error"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
