package llms

import "context"

// Transport issues one streaming request per call.
type Transport interface {
	PromptWithStream(ctx context.Context, request Request) (Stream, error)
	// NewDemuxer returns a fresh demuxer for the wire envelope used by the
	// transport's streams. Each call owns its demuxer.
	NewDemuxer() Demuxer
}

// Stream yields raw response chunks in arrival order. The sequence ends
// after the last chunk, or after a single non-nil error. The next chunk is
// read only once yield returns, which is the back-pressure contract callers
// rely on.
type Stream interface {
	Chunks(ctx context.Context) func(func(RawChunk, error) bool)
}

// RawChunk is an opaque piece of transport data. Chunk boundaries carry no
// meaning and may fall anywhere, including inside a multi-byte character or
// an escape sequence.
type RawChunk []byte

// Demuxer strips the provider envelope off raw chunks.
type Demuxer interface {
	// Write consumes one chunk and returns the logical text it completed,
	// already unescaped. Incomplete trailing data is retained and prefixed
	// to the next chunk.
	Write(chunk RawChunk) string
	// Pending reports how many raw bytes are retained awaiting more data.
	Pending() int
}
