package entity

import "github.com/shopspring/decimal"

// PaymentLineItem is one priced line sent to the hosted payment page.
type PaymentLineItem struct {
	Name      string
	Image     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// CheckoutSessionRequest describes the hosted payment session to open.
type CheckoutSessionRequest struct {
	OrderID    string
	Currency   string
	LineItems  []PaymentLineItem
	Shipping   decimal.Decimal
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider handle returned to the client.
type CheckoutSession struct {
	ID  string
	URL string
}

const EventCheckoutCompleted = "checkout.session.completed"

// PaymentEvent is a verified provider notification.
type PaymentEvent struct {
	ID   string
	Type string
	// Checkout is set for checkout.session.completed events.
	Checkout *CheckoutCompleted
}

// CheckoutCompleted carries the fields of a completed hosted session.
type CheckoutCompleted struct {
	SessionID     string
	OrderID       string
	PaymentStatus string
	CustomerEmail string
}
