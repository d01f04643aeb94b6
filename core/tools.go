package orchestration

import (
	"context"
	"fmt"

	"github.com/jimli1231/eletron-vrm/core/reply"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tools the desktop automation collaborator understands. The session only
// routes them to registered handlers.
const (
	ToolTypeText         = "type_text"
	ToolClickImage       = "click_image"
	ToolAdjustBrightness = "adjust_brightness"
)

// dispatchAction runs the handler registered for the action's tool. Handler
// failures are recorded on the span and never fail the call.
func (s *Session) dispatchAction(ctx context.Context, action reply.Action) {
	ctx, span := tracer.Start(ctx, "execute action")
	defer span.End()
	span.SetAttributes(attribute.String("action.tool", action.Tool))

	handler, ok := s.actionHandlers[action.Tool]
	if !ok {
		span.AddEvent("no handler registered")
		logger.DebugContext(ctx, "no handler registered for action", "tool", action.Tool)
		return
	}

	run := panicSafeNamedWorker(action.Tool, func(ctx context.Context) error {
		return handler(ctx, action.Args)
	})
	if err := run(ctx); err != nil {
		err = fmt.Errorf("failed to execute action %q: %w", action.Tool, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "action handler failed", "tool", action.Tool, "error", err)
	}
}
