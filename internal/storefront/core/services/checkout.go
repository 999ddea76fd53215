package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/paymentlog"
	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/pkg/metrics"
	"github.com/jcmexdev/storefront/internal/pkg/reqmeta"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
)

type CheckoutItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type AddressInput struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
}

type CheckoutInput struct {
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *AddressInput  `json:"shippingAddress" validate:"required"`
	PaymentMethod   string         `json:"paymentMethod" validate:"required"`
}

type CheckoutResult struct {
	SessionID string
	OrderID   string
	URL       string
}

// CheckoutService turns a submitted cart into a pending order and a hosted
// payment session.
type CheckoutService struct {
	products  ports.ProductRepository
	orders    ports.OrderRepository
	gateway   ports.PaymentGateway
	publisher ports.EventPublisher
	recorder  *paymentlog.Recorder
	validator *validation.Validator
	pricing   entity.Pricing
	baseURL   string
	now       func() time.Time
}

type CheckoutDeps struct {
	Products  ports.ProductRepository
	Orders    ports.OrderRepository
	Gateway   ports.PaymentGateway
	Publisher ports.EventPublisher
	Recorder  *paymentlog.Recorder
	Validator *validation.Validator
	Pricing   entity.Pricing
	BaseURL   string
}

func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	publisher := d.Publisher
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	return &CheckoutService{
		products:  d.Products,
		orders:    d.Orders,
		gateway:   d.Gateway,
		publisher: publisher,
		recorder:  d.Recorder,
		validator: d.Validator,
		pricing:   d.Pricing,
		baseURL:   strings.TrimRight(d.BaseURL, "/"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates the request against current catalog prices and
// stock, persists a pending order and opens a payment session for it.
// Stock is checked, not reserved.
func (s *CheckoutService) CreateOrder(ctx context.Context, principal *auth.Principal, in CheckoutInput) (*CheckoutResult, error) {
	res, err := s.createOrder(ctx, principal, in)
	metrics.CheckoutTotal.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func (s *CheckoutService) createOrder(ctx context.Context, principal *auth.Principal, in CheckoutInput) (*CheckoutResult, error) {
	if principal == nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	if len(in.Items) == 0 || in.ShippingAddress == nil || strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, apperr.Invalid("Incomplete order data")
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load products", err)
	}
	byID := make(map[string]entity.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	subtotal := decimal.Zero
	lineItems := make([]entity.PaymentLineItem, 0, len(in.Items))
	orderItems := make([]entity.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, apperr.Invalidf("Product not found: %s", it.ProductID)
		}
		if p.Stock < it.Quantity {
			return nil, apperr.Invalidf("Insufficient stock for %s", p.Name)
		}
		item := entity.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			Price:     p.Price,
			Image:     p.FirstImage(),
		}
		subtotal = subtotal.Add(item.Subtotal())
		orderItems = append(orderItems, item)
		lineItems = append(lineItems, entity.PaymentLineItem{
			Name:      p.Name,
			Image:     item.Image,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
		})
	}

	totals := s.pricing.Compute(subtotal)
	order := &entity.Order{
		UserID:          principal.UserID,
		Items:           orderItems,
		ShippingAddress: toAddress(*in.ShippingAddress),
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        totals.Subtotal,
		ShippingPrice:   totals.Shipping,
		Discount:        totals.Discount,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          entity.StatusPending,
		CreatedAt:       s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperr.Internal("failed to create order", err)
	}
	detail := map[string]any{
		"user_id": order.UserID,
		"items":   len(order.Items),
		"total":   order.Total.StringFixed(2),
	}
	if key := reqmeta.IdempotencyKey(ctx); key != "" {
		detail["idempotency_key"] = key
	}
	s.recorder.Record(ctx, order.ID, paymentlog.EventOrderCreated, detail)
	metrics.OrderValue.Observe(order.Total.InexactFloat64())
	s.publish(ctx, entity.Event{
		Type:       entity.EventOrderCreated,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Total:      order.Total.StringFixed(2),
		OccurredAt: order.CreatedAt,
	})

	session, err := s.gateway.CreateCheckoutSession(ctx, entity.CheckoutSessionRequest{
		OrderID:    order.ID,
		Currency:   s.pricing.Currency,
		LineItems:  lineItems,
		Shipping:   totals.Shipping,
		SuccessURL: fmt.Sprintf("%s/checkout/success?order_id=%s", s.baseURL, order.ID),
		CancelURL:  s.baseURL + "/checkout?canceled=true",
	})
	if err != nil {
		s.recorder.Record(ctx, order.ID, paymentlog.EventSessionFailed, map[string]any{"error": err.Error()})
		return nil, apperr.Integration("Error processing payment", err)
	}
	s.recorder.Record(ctx, order.ID, paymentlog.EventSessionOpened, map[string]any{"session_id": session.ID})

	slog.InfoContext(ctx, "checkout session opened",
		"order_id", order.ID,
		"session_id", session.ID,
		"total", order.Total.StringFixed(2),
	)
	return &CheckoutResult{SessionID: session.ID, OrderID: order.ID, URL: session.URL}, nil
}

func (s *CheckoutService) publish(ctx context.Context, evt entity.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.WarnContext(ctx, "order event publish failed", "type", evt.Type, "order_id", evt.OrderID, "error", err)
	}
}

func toAddress(in AddressInput) entity.ShippingAddress {
	return entity.ShippingAddress{
		FullName:   in.FullName,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return apperr.KindOf(err).String()
}
