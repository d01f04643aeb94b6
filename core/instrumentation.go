package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/jimli1231/eletron-vrm/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	callCounter        = newInt64Counter("session.calls", "Calls by outcome")
	speechDeltaCounter = newInt64Counter("session.speech_deltas", "Speech deltas emitted to handlers")
)

func newInt64Counter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("failed to create counter, metrics disabled", "counter", name, "error", err)
		counter, _ = noop.NewMeterProvider().Meter(scopeName).Int64Counter(name)
	}
	return counter
}
