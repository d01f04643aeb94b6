package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jimli1231/eletron-vrm/core/conversations"
	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/llms"
	"github.com/jimli1231/eletron-vrm/core/reply"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type callComponents struct {
	apiKey       string
	transport    llms.Transport
	history      *conversations.History
	model        string
	instruction  string
	chunkTimeout time.Duration
	emit         eventEmitter
	dispatch     func(ctx context.Context, action reply.Action)
}

// activeCall holds everything that belongs to exactly one call: the logical
// document, the demuxer and the field cursors. None of it outlives the call.
type activeCall struct {
	ID     string
	Prompt string

	ctx    context.Context
	cancel context.CancelCauseFunc

	components callComponents

	document  strings.Builder
	demuxer   llms.Demuxer
	extractor *reply.Extractor
}

func newActiveCall(ctx context.Context, id, prompt string, components callComponents) *activeCall {
	ctx, cancel := context.WithCancelCause(ctx)
	return &activeCall{
		ID:         id,
		Prompt:     prompt,
		ctx:        ctx,
		cancel:     cancel,
		components: components,
		extractor:  reply.NewExtractor(id),
	}
}

func (c *activeCall) run() error {
	ctx, span := tracer.Start(c.ctx, "stream call", trace.WithAttributes(
		attribute.String("call.id", c.ID),
		attribute.Int("call.prompt_length", len(c.Prompt)),
	))
	defer span.End()

	c.components.emit(events.NewCallStarted(c.ID, c.Prompt))

	snapshot, generation := c.components.history.SnapshotAt()
	c.components.history.RecordUser(c.Prompt)
	span.SetAttributes(attribute.Int("call.history_length", len(snapshot)))

	if c.components.apiKey == "" {
		return c.fail(ctx, ErrMissingAPIKey)
	}

	request := llms.NewRequest(snapshot, c.Prompt,
		llms.WithModel(c.components.model),
		llms.WithSystemInstruction(c.components.instruction),
	)
	stream, err := c.components.transport.PromptWithStream(ctx, request)
	if err != nil {
		return c.fail(ctx, err)
	}

	c.demuxer = c.components.transport.NewDemuxer()
	if err := c.consume(ctx, stream); err != nil {
		return c.fail(ctx, err)
	}

	action, err := reply.Finalize(c.document.String())
	if err != nil {
		span.AddEvent("reply parse warning", trace.WithAttributes(attribute.String("error", err.Error())))
		logger.WarnContext(ctx, "could not parse the completed reply, no action emitted",
			"call_id", c.ID, "error", err)
	} else if action != nil {
		span.SetAttributes(attribute.String("call.action", action.Tool))
		c.components.emit(events.NewActionRequested(c.ID, action.Tool, action.Args))
		c.components.dispatch(ctx, *action)
	}

	speech := c.extractor.Speech()
	if speech != "" {
		if !c.components.history.RecordModelAt(generation, speech) {
			logger.InfoContext(ctx, "history cleared during the call, reply not recorded", "call_id", c.ID)
		}
	}

	span.SetAttributes(attribute.Int("call.speech_length", len(speech)))
	callCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcomeCompleted))))
	logger.DebugContext(ctx, "call completed", "call_id", c.ID, "state", StateCompleted)
	c.components.emit(events.NewCallEnded(c.ID, speech, string(c.extractor.Emotion())))
	return nil
}

// consume processes chunks one at a time. The next chunk is only requested
// once the previous one has been demuxed and its events delivered.
func (c *activeCall) consume(ctx context.Context, stream llms.Stream) error {
	watchdog := c.newWatchdog()
	defer watchdog.Stop()

	for chunk, err := range stream.Chunks(ctx) {
		watchdog.Stop()
		if err != nil {
			return c.cause(err)
		}

		if text := c.demuxer.Write(chunk); text != "" {
			c.document.WriteString(text)
			for _, event := range c.extractor.Feed(c.document.String()) {
				if event.Kind() == events.KindSpeechDelta {
					speechDeltaCounter.Add(ctx, 1)
				}
				c.components.emit(event)
			}
		}
		watchdog.Reset()
	}

	// A transport may end its sequence quietly on cancellation.
	if ctx.Err() != nil {
		return c.cause(ctx.Err())
	}
	if pending := c.demuxer.Pending(); pending > 0 {
		logger.DebugContext(ctx, "stream ended with unmatched envelope data", "call_id", c.ID, "pending_bytes", pending)
	}
	return nil
}

// cause prefers the reason the call was cancelled over the error it caused.
func (c *activeCall) cause(err error) error {
	cause := context.Cause(c.ctx)
	if cause == nil || errors.Is(err, cause) {
		return err
	}
	if errors.Is(cause, ErrChunkTimeout) || errors.Is(cause, ErrCallCancelled) {
		return cause
	}
	return fmt.Errorf("%w: %w", cause, err)
}

func (c *activeCall) fail(ctx context.Context, err error) error {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	callCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcomeFailed))))
	logger.WarnContext(ctx, "call failed", "call_id", c.ID, "state", StateFailed, "error", err)

	c.components.emit(events.NewCallFailed(c.ID, err))
	return err
}

type watchdog struct {
	timeout time.Duration
	timer   *time.Timer
}

// newWatchdog cancels the call with ErrChunkTimeout unless it is reset
// within the chunk timeout.
func (c *activeCall) newWatchdog() *watchdog {
	w := &watchdog{timeout: c.components.chunkTimeout}
	if w.timeout > 0 {
		w.timer = time.AfterFunc(w.timeout, func() { c.cancel(ErrChunkTimeout) })
	}
	return w
}

func (w *watchdog) Stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) Reset() {
	if w.timer != nil {
		w.timer.Reset(w.timeout)
	}
}
