package assistant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/echo-assistant/pkg/metrics"
)

const tracerName = "github.com/FACorreiaa/echo-assistant/internal/domain/assistant"

// FallbackEngine asks the primary engine first and answers with the
// fallback engine when the primary fails.
type FallbackEngine struct {
	primary  Interpreter
	fallback Interpreter
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewFallbackEngine creates a FallbackEngine. m may be nil.
func NewFallbackEngine(primary, fallback Interpreter, m *metrics.Metrics, logger *slog.Logger) *FallbackEngine {
	return &FallbackEngine{primary: primary, fallback: fallback, metrics: m, logger: logger}
}

func (e *FallbackEngine) Interpret(ctx context.Context, utterance string, ictx Context) (*Result, error) {
	res, err := e.primary.Interpret(ctx, utterance, ictx)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil, err
	}

	e.logger.Warn("primary interpreter failed, using fallback", "error", err)
	e.metrics.IncFallback()
	return e.fallback.Interpret(ctx, utterance, ictx)
}

// InstrumentedEngine records metrics and a trace span around another Interpreter.
type InstrumentedEngine struct {
	next    Interpreter
	name    string
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewInstrumentedEngine wraps next. Spans go to the global tracer provider.
func NewInstrumentedEngine(next Interpreter, name string, m *metrics.Metrics) *InstrumentedEngine {
	return &InstrumentedEngine{
		next:    next,
		name:    name,
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

func (e *InstrumentedEngine) Interpret(ctx context.Context, utterance string, ictx Context) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "assistant.Interpret", trace.WithAttributes(
		attribute.String("assistant.engine", e.name),
		attribute.Int("assistant.utterance_length", len(utterance)),
	))
	defer span.End()

	start := time.Now()
	res, err := e.next.Interpret(ctx, utterance, ictx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.ObserveInterpretation(e.name, "error", string(ictx.DefaultLanguage), time.Since(start))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("assistant.intent", string(res.Intent)),
		attribute.String("assistant.lang", string(res.Lang)),
	)
	e.metrics.ObserveInterpretation(e.name, string(res.Intent), string(res.Lang), time.Since(start))
	return res, nil
}
