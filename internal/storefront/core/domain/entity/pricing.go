package entity

import "github.com/shopspring/decimal"

// Totals is the price breakdown of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Pricing holds the store-wide shipping fee and tax rate.
type Pricing struct {
	ShippingPrice decimal.Decimal
	TaxRate       decimal.Decimal
	Currency      string
}

// DefaultPricing is a flat 10.00 shipping fee and 7% tax in USD.
func DefaultPricing() Pricing {
	return Pricing{
		ShippingPrice: decimal.RequireFromString("10.00"),
		TaxRate:       decimal.RequireFromString("0.07"),
		Currency:      "usd",
	}
}

// Compute derives totals for a subtotal. Tax is rounded to cents;
// total = subtotal + shipping - discount + tax.
func (p Pricing) Compute(subtotal decimal.Decimal) Totals {
	tax := subtotal.Mul(p.TaxRate).Round(2)
	discount := decimal.Zero
	return Totals{
		Subtotal: subtotal,
		Shipping: p.ShippingPrice,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Add(p.ShippingPrice).Sub(discount).Add(tax),
	}
}
