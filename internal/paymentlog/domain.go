// Package paymentlog is a durable audit trail of checkout and payment
// transitions. Each entry records the trace it was written under so a row
// can be joined with the distributed trace of the request that produced it.
package paymentlog

import "time"

// Event names a transition in an order's payment lifecycle.
type Event string

const (
	EventOrderCreated     Event = "ORDER_CREATED"
	EventSessionOpened    Event = "SESSION_OPENED"
	EventSessionFailed    Event = "SESSION_FAILED"
	EventPaymentConfirmed Event = "PAYMENT_CONFIRMED"
	EventStockAdjusted    Event = "STOCK_ADJUSTED"
	EventWebhookRejected  Event = "WEBHOOK_REJECTED"
)

// Entry is one row of the payment_logs table.
type Entry struct {
	// OrderID may be empty for rejected webhooks that never reached an order.
	OrderID string
	Event   Event
	// Detail is a JSON object with event-specific fields.
	Detail  string
	TraceID string
	SpanID  string
	At      time.Time
}
