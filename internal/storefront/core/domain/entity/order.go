package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderItem is a line item captured at order creation. Its price is never
// recalculated afterwards.
type OrderItem struct {
	ProductID string
	Name      string
	Quantity  int
	Price     decimal.Decimal
	Image     string
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ShippingAddress struct {
	FullName   string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
}

// PaymentResult is the provider's view of the payment, captured by the webhook.
type PaymentResult struct {
	ID           string
	Status       string
	UpdateTime   string
	EmailAddress string
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Subtotal        decimal.Decimal
	ShippingPrice   decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	PaymentResult   *PaymentResult
	Status          OrderStatus
	CreatedAt       time.Time
}

// MarkPaid records a confirmed payment.
func (o *Order) MarkPaid(at time.Time, result PaymentResult) {
	o.IsPaid = true
	paidAt := at
	o.PaidAt = &paidAt
	o.Status = StatusProcessing
	o.PaymentResult = &result
}
