package entity

import "time"

// Event is an order lifecycle notification handed to the broker.
type Event struct {
	Type       string
	OrderID    string
	UserID     string
	Total      string
	OccurredAt time.Time
}

const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)
