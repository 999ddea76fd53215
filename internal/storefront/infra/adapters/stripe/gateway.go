// Package stripe adapts Stripe Checkout to the payment ports.
package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	stripelib "github.com/stripe/stripe-go/v82"
	stripesession "github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const (
	shippingDisplayName  = "Standard shipping"
	shippingMinDays      = 3
	shippingMaxDays      = 5
	metadataOrderID      = "orderId"
	deliveryEstimateUnit = "business_day"
)

// Gateway opens hosted checkout sessions.
type Gateway struct {
	createSession func(params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error)
}

var _ ports.PaymentGateway = (*Gateway)(nil)

// NewGateway sets the process-wide API key used by stripe-go.
func NewGateway(secretKey string) *Gateway {
	stripelib.Key = strings.TrimSpace(secretKey)
	return &Gateway{createSession: stripesession.New}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req entity.CheckoutSessionRequest) (*entity.CheckoutSession, error) {
	params := sessionParams(req)
	params.Context = ctx

	s, err := g.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session for order %s: %w", req.OrderID, err)
	}
	if s == nil || s.ID == "" {
		return nil, fmt.Errorf("stripe: empty checkout session for order %s", req.OrderID)
	}
	return &entity.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func sessionParams(req entity.CheckoutSessionRequest) *stripelib.CheckoutSessionParams {
	currency := strings.ToLower(req.Currency)

	lineItems := make([]*stripelib.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		product := &stripelib.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripelib.String(li.Name),
		}
		if li.Image != "" {
			product.Images = stripelib.StringSlice([]string{li.Image})
		}
		lineItems = append(lineItems, &stripelib.CheckoutSessionLineItemParams{
			PriceData: &stripelib.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripelib.String(currency),
				ProductData: product,
				UnitAmount:  stripelib.Int64(toCents(li.UnitPrice)),
			},
			Quantity: stripelib.Int64(int64(li.Quantity)),
		})
	}

	params := &stripelib.CheckoutSessionParams{
		PaymentMethodTypes: stripelib.StringSlice([]string{"card"}),
		Mode:               stripelib.String(string(stripelib.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripelib.String(req.SuccessURL),
		CancelURL:          stripelib.String(req.CancelURL),
		ShippingOptions: []*stripelib.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripelib.CheckoutSessionShippingOptionShippingRateDataParams{
					Type: stripelib.String("fixed_amount"),
					FixedAmount: &stripelib.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripelib.Int64(toCents(req.Shipping)),
						Currency: stripelib.String(currency),
					},
					DisplayName: stripelib.String(shippingDisplayName),
					DeliveryEstimate: &stripelib.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateParams{
						Minimum: &stripelib.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMinimumParams{
							Unit:  stripelib.String(deliveryEstimateUnit),
							Value: stripelib.Int64(shippingMinDays),
						},
						Maximum: &stripelib.CheckoutSessionShippingOptionShippingRateDataDeliveryEstimateMaximumParams{
							Unit:  stripelib.String(deliveryEstimateUnit),
							Value: stripelib.Int64(shippingMaxDays),
						},
					},
				},
			},
		},
	}
	params.AddMetadata(metadataOrderID, req.OrderID)
	return params
}

// toCents converts a currency amount to the smallest unit, rounding half
// away from zero.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
