package internal

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "github.com/dmitrymomot/anvil"

// startRequestSpan opens the server span that covers the whole pipeline.
func startRequestSpan(ctx context.Context, tracer trace.Tracer, method, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "anvil.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

// traceStage runs one stage inside a child span of the request span.
// Chunks keep seeing the request span in c.Context().
func traceStage(c *Context, tracer trace.Tracer, stage Stage, chunks []Middleware) (Signal, error) {
	_, span := tracer.Start(c.Context(), "anvil."+string(stage),
		trace.WithAttributes(attribute.Int("anvil.chunks", len(chunks))),
	)
	defer span.End()

	sig, err := RunStage(chunks, c)

	span.SetAttributes(attribute.String("anvil.signal", sig.String()))
	endSpan(span, err)
	return sig, err
}

// endSpan records err on span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(defaultTracerName)
}
