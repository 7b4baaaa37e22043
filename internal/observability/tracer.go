package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan creates a new span with the given name and attributes
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// SpanFromContext returns the current span from context
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// TraceIDs extracts the current trace and span IDs from ctx for log
// correlation. Both come back empty when tracing is disabled.
func TraceIDs(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// SetSpanError marks the span as errored
func SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanOK marks the span as successful
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Common attribute keys for scanner spans
var (
	AttrScanID      = attribute.Key("repo_scanner.scan_id")
	AttrRepository  = attribute.Key("repo_scanner.repository")
	AttrBatchIndex  = attribute.Key("repo_scanner.batch_index")
	AttrFileCount   = attribute.Key("repo_scanner.file_count")
	AttrConcurrency = attribute.Key("repo_scanner.concurrency")
	AttrFilePath    = attribute.Key("repo_scanner.file_path")
	AttrFromCache   = attribute.Key("repo_scanner.from_cache")
	AttrDurationMs  = attribute.Key("repo_scanner.duration_ms")
)
