package paymentlog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars), "" without an active span.
	TraceID string
	// SpanID is the W3C span ID (16 lowercase hex chars).
	SpanID string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx. otelhttp
// starts a server span for every request, so handlers always have one when
// tracing is enabled; in tests both fields are empty.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry with the trace info taken from ctx.
//
//	entry := paymentlog.NewEntry(ctx, orderID, paymentlog.EventSessionOpened, map[string]any{"session_id": id})
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, orderID string, event Event, detail map[string]any) *Entry {
	ti := ExtractTraceInfo(ctx)

	detailJSON := "{}"
	if len(detail) > 0 {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}

	return &Entry{
		OrderID: orderID,
		Event:   event,
		Detail:  detailJSON,
		TraceID: ti.TraceID,
		SpanID:  ti.SpanID,
		At:      time.Now().UTC(),
	}
}
