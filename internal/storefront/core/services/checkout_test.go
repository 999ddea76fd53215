package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/paymentlog"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/pkg/reqmeta"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
)

type checkoutFixture struct {
	svc       *CheckoutService
	products  *memory.ProductRepository
	orders    *memory.OrderRepository
	gateway   *fakeGateway
	publisher *fakePublisher
	log       *memLog
}

var shopper = &auth.Principal{UserID: "u1", Name: "Ana", Email: "ana@example.com", Role: "user"}

func newCheckoutFixture(t *testing.T, seed ...entity.Product) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		products:  memory.NewProductRepository(seed...),
		orders:    memory.NewOrderRepository(),
		gateway:   &fakeGateway{},
		publisher: &fakePublisher{},
		log:       &memLog{},
	}
	f.svc = NewCheckoutService(CheckoutDeps{
		Products:  f.products,
		Orders:    f.orders,
		Gateway:   f.gateway,
		Publisher: f.publisher,
		Recorder:  paymentlog.NewRecorder(f.log),
		Validator: validation.New(),
		Pricing:   entity.DefaultPricing(),
		BaseURL:   "http://shop.test/",
	})
	return f
}

func validAddress() *AddressInput {
	return &AddressInput{
		FullName:   "Ana Perez",
		Street:     "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}
}

func lamp() entity.Product {
	return entity.Product{
		ID:       "p-lamp",
		Name:     "Desk Lamp",
		Price:    decimal.NewFromInt(100),
		Category: "home",
		Stock:    5,
		Images:   []string{"https://img.example/lamp.jpg", "https://img.example/lamp-2.jpg"},
	}
}

func TestCheckoutCreatesPendingOrderAndSession(t *testing.T) {
	f := newCheckoutFixture(t, lamp())

	res, err := f.svc.CreateOrder(context.Background(), shopper, CheckoutInput{
		Items:           []CheckoutItem{{ProductID: "p-lamp", Quantity: 1}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "stripe",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", res.SessionID)
	assert.Equal(t, "https://pay.example/cs_test_1", res.URL)

	order, err := f.orders.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, entity.StatusPending, order.Status)
	assert.False(t, order.IsPaid)
	assert.Equal(t, "100.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", order.ShippingPrice.StringFixed(2))
	assert.Equal(t, "7.00", order.Tax.StringFixed(2))
	assert.Equal(t, "117.00", order.Total.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Desk Lamp", order.Items[0].Name)
	assert.Equal(t, "https://img.example/lamp.jpg", order.Items[0].Image)
	assert.Equal(t, "Springfield", order.ShippingAddress.City)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, res.OrderID, req.OrderID)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, "http://shop.test/checkout/success?order_id="+res.OrderID, req.SuccessURL)
	assert.Equal(t, "http://shop.test/checkout?canceled=true", req.CancelURL)
	assert.Equal(t, "10.00", req.Shipping.StringFixed(2))
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, 1, req.LineItems[0].Quantity)

	assert.Equal(t, []string{entity.EventOrderCreated}, f.publisher.types())
	assert.Equal(t, []paymentlog.Event{paymentlog.EventOrderCreated, paymentlog.EventSessionOpened}, f.log.events())

	p, err := f.products.Get(context.Background(), "p-lamp")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "checkout must not reserve stock")
}

func TestCheckoutKeepsInputOrderAcrossItems(t *testing.T) {
	mug := entity.Product{ID: "p-mug", Name: "Mug", Price: decimal.RequireFromString("12.50"), Stock: 10}
	f := newCheckoutFixture(t, lamp(), mug)

	res, err := f.svc.CreateOrder(context.Background(), shopper, CheckoutInput{
		Items: []CheckoutItem{
			{ProductID: "p-mug", Quantity: 2},
			{ProductID: "p-lamp", Quantity: 1},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "stripe",
	})
	require.NoError(t, err)

	order, err := f.orders.Get(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "p-mug", order.Items[0].ProductID)
	assert.Equal(t, "p-lamp", order.Items[1].ProductID)
	assert.Equal(t, "", order.Items[0].Image)
	assert.Equal(t, "125.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "8.75", order.Tax.StringFixed(2))
	assert.Equal(t, "143.75", order.Total.StringFixed(2))
}

func TestCheckoutRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name      string
		principal *auth.Principal
		input     CheckoutInput
		kind      apperr.Kind
		contains  string
	}{
		{
			name:  "no principal",
			input: CheckoutInput{Items: []CheckoutItem{{ProductID: "p-lamp", Quantity: 1}}, ShippingAddress: validAddress(), PaymentMethod: "stripe"},
			kind:  apperr.KindUnauthorized,
		},
		{
			name:      "no items",
			principal: shopper,
			input:     CheckoutInput{ShippingAddress: validAddress(), PaymentMethod: "stripe"},
			kind:      apperr.KindInvalid,
			contains:  "Incomplete order data",
		},
		{
			name:      "no address",
			principal: shopper,
			input:     CheckoutInput{Items: []CheckoutItem{{ProductID: "p-lamp", Quantity: 1}}, PaymentMethod: "stripe"},
			kind:      apperr.KindInvalid,
			contains:  "Incomplete order data",
		},
		{
			name:      "no payment method",
			principal: shopper,
			input:     CheckoutInput{Items: []CheckoutItem{{ProductID: "p-lamp", Quantity: 1}}, ShippingAddress: validAddress()},
			kind:      apperr.KindInvalid,
		},
		{
			name:      "zero quantity",
			principal: shopper,
			input:     CheckoutInput{Items: []CheckoutItem{{ProductID: "p-lamp", Quantity: 0}}, ShippingAddress: validAddress(), PaymentMethod: "stripe"},
			kind:      apperr.KindInvalid,
		},
		{
			name:      "unknown product",
			principal: shopper,
			input:     CheckoutInput{Items: []CheckoutItem{{ProductID: "p-ghost", Quantity: 1}}, ShippingAddress: validAddress(), PaymentMethod: "stripe"},
			kind:      apperr.KindInvalid,
			contains:  "p-ghost",
		},
		{
			name:      "insufficient stock",
			principal: shopper,
			input:     CheckoutInput{Items: []CheckoutItem{{ProductID: "p-lamp", Quantity: 6}}, ShippingAddress: validAddress(), PaymentMethod: "stripe"},
			kind:      apperr.KindInvalid,
			contains:  "Desk Lamp",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(t, lamp())

			_, err := f.svc.CreateOrder(context.Background(), tc.principal, tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
			assert.Zero(t, f.orders.Len(), "no order may be persisted")
			assert.Empty(t, f.gateway.requests)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestCheckoutZeroQuantityNamesField(t *testing.T) {
	f := newCheckoutFixture(t, lamp())

	_, err := f.svc.CreateOrder(context.Background(), shopper, CheckoutInput{
		Items:           []CheckoutItem{{ProductID: "p-lamp", Quantity: 0}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "stripe",
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "items[0].quantity", e.Fields[0].Field)
}

func TestCheckoutSessionFailureKeepsPendingOrder(t *testing.T) {
	f := newCheckoutFixture(t, lamp())
	f.gateway.err = errors.New("card network down")

	_, err := f.svc.CreateOrder(context.Background(), shopper, CheckoutInput{
		Items:           []CheckoutItem{{ProductID: "p-lamp", Quantity: 1}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "stripe",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindIntegration, apperr.KindOf(err))
	assert.Equal(t, 1, f.orders.Len())
	assert.Equal(t, []paymentlog.Event{paymentlog.EventOrderCreated, paymentlog.EventSessionFailed}, f.log.events())
}

func TestCheckoutRecordsIdempotencyKey(t *testing.T) {
	f := newCheckoutFixture(t, lamp())
	ctx := reqmeta.WithIdempotencyKey(context.Background(), "idem-42")

	_, err := f.svc.CreateOrder(ctx, shopper, CheckoutInput{
		Items:           []CheckoutItem{{ProductID: "p-lamp", Quantity: 1}},
		ShippingAddress: validAddress(),
		PaymentMethod:   "stripe",
	})
	require.NoError(t, err)

	require.NotEmpty(t, f.log.entries)
	assert.Equal(t, paymentlog.EventOrderCreated, f.log.entries[0].Event)
	assert.Contains(t, f.log.entries[0].Detail, `"idempotency_key":"idem-42"`)
}
