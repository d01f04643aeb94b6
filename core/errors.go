package orchestration

import (
	"errors"

	"github.com/jimli1231/eletron-vrm/core/llms"
)

var (
	// ErrMissingAPIKey is reported when the session has no credential. It is
	// raised before any network I/O.
	ErrMissingAPIKey = llms.ErrMissingAPIKey
	// ErrCallInFlight is returned by StartCall while another call streams.
	ErrCallInFlight  = errors.New("a call is already in flight")
	// ErrChunkTimeout fails a call that received no chunk within the
	// configured window.
	ErrChunkTimeout  = errors.New("timed out waiting for the next chunk")
	// ErrCallCancelled is the cause of calls aborted through Cancel.
	ErrCallCancelled = errors.New("call cancelled")
)
