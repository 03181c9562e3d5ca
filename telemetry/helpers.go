package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceExecutionTime measures the execution time of a function and records it in the span
func TraceExecutionTime(ctx context.Context, name string, fn func() error) error {
	ctx, span := StartSpan(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int64("execution_time_ms", elapsed.Milliseconds()),
	)

	if err != nil {
		RecordError(span, err, "Operation failed")
	}

	return err
}

// TraceFunctionExecution is a simple helper to trace the execution of a function
func TraceFunctionExecution(ctx context.Context, name string) (context.Context, trace.Span, func()) {
	ctx, span := StartSpan(ctx, name)
	start := time.Now()

	return ctx, span, func() {
		elapsed := time.Since(start)
		span.SetAttributes(attribute.Int64("execution_time_ms", elapsed.Milliseconds()))
		span.End()
	}
}

// TraceChunkIO traces one read or write against the chunked archive,
// tagging the term whose posting chain is being touched.
func TraceChunkIO(ctx context.Context, op string, termID uint64) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, "chunk."+op)
	span.SetAttributes(
		attribute.String("chunk.operation", op),
		attribute.Int64("chunk.term_id", int64(termID)),
	)
	return ctx, span
}

// TraceBuild wraps one Index.Build call, recording the document count it
// consumed on success.
func TraceBuild(ctx context.Context, fn func() (uint64, error)) (uint64, error) {
	ctx, span := StartSpan(ctx, "boolidx.Build")
	defer span.End()

	start := time.Now()
	n, err := fn()
	span.SetAttributes(
		attribute.Int64("build.docs_indexed", int64(n)),
		attribute.Int64("execution_time_ms", time.Since(start).Milliseconds()),
	)
	if err != nil {
		RecordError(span, err, "build failed")
	}
	return n, err
}

// TracePersist wraps one Index.Persist call against the given directory.
func TracePersist(ctx context.Context, dir string, fn func() error) error {
	ctx, span := StartSpan(ctx, "boolidx.Persist")
	defer span.End()
	span.SetAttributes(attribute.String("persist.dir", dir))
	return TraceExecutionTime(ctx, "boolidx.Persist.write", fn)
}

// TraceLoad wraps one Load call against the given directory, recording
// the term count once the vocabulary is known.
func TraceLoad(ctx context.Context, dir string, fn func() (uint64, error)) (uint64, error) {
	ctx, span := StartSpan(ctx, "boolidx.Load")
	defer span.End()
	span.SetAttributes(attribute.String("load.dir", dir))

	terms, err := fn()
	span.SetAttributes(attribute.Int64("load.terms", int64(terms)))
	if err != nil {
		RecordError(span, err, "load failed")
	}
	return terms, err
}

// TraceQuery wraps one ExecuteQuery compile-and-run, tagging the root
// query node kind for quick filtering in a trace backend.
func TraceQuery(ctx context.Context, rootKind string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, "boolidx.ExecuteQuery")
	span.SetAttributes(attribute.String("query.root_kind", rootKind))
	return ctx, span
}
