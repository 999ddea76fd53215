package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/storefront/internal/coordinator"
	"github.com/jcmexdev/storefront/internal/paymentlog"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// PaymentService applies verified provider notifications to orders.
type PaymentService struct {
	orders    ports.OrderRepository
	products  ports.ProductRepository
	publisher ports.EventPublisher
	recorder  *paymentlog.Recorder
	now       func() time.Time
}

func NewPaymentService(orders ports.OrderRepository, products ports.ProductRepository, publisher ports.EventPublisher, recorder *paymentlog.Recorder) *PaymentService {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	return &PaymentService{
		orders:    orders,
		products:  products,
		publisher: publisher,
		recorder:  recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent dispatches a verified event. Only completed checkout sessions
// change state; every other type is acknowledged and ignored.
func (s *PaymentService) HandleEvent(ctx context.Context, evt *entity.PaymentEvent) error {
	if evt.Type != entity.EventCheckoutCompleted {
		slog.DebugContext(ctx, "ignoring payment event", "event_id", evt.ID, "type", evt.Type)
		return nil
	}
	if evt.Checkout == nil {
		return apperr.Invalid("checkout session missing from event")
	}
	return s.ConfirmCheckout(ctx, *evt.Checkout)
}

// ConfirmCheckout marks the referenced order paid and decrements the stock
// of each of its line items. The decrement is unconditional: a redelivered
// notification decrements again. If any write fails the completed ones are
// reverted so the provider's retry starts from the same state.
func (s *PaymentService) ConfirmCheckout(ctx context.Context, c entity.CheckoutCompleted) error {
	order, err := s.orders.Get(ctx, c.OrderID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("Order not found")
	}
	if err != nil {
		return fmt.Errorf("payments: load order %s: %w", c.OrderID, err)
	}

	now := s.now()
	if err := s.confirmSaga(order, now, c).Start(ctx); err != nil {
		return fmt.Errorf("payments: confirm order %s: %w", order.ID, err)
	}
	s.recorder.Record(ctx, order.ID, paymentlog.EventPaymentConfirmed, map[string]any{
		"session_id":     c.SessionID,
		"payment_status": c.PaymentStatus,
	})
	s.recorder.Record(ctx, order.ID, paymentlog.EventStockAdjusted, map[string]any{"items": len(order.Items)})

	if err := s.publisher.Publish(ctx, entity.Event{
		Type:       entity.EventOrderPaid,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Total:      order.Total.StringFixed(2),
		OccurredAt: now,
	}); err != nil {
		slog.WarnContext(ctx, "order event publish failed", "type", entity.EventOrderPaid, "order_id", order.ID, "error", err)
	}

	slog.InfoContext(ctx, "order paid", "order_id", order.ID, "session_id", c.SessionID)
	return nil
}

// RecordRejected logs a webhook that failed verification.
func (s *PaymentService) RecordRejected(ctx context.Context, reason string) {
	s.recorder.Record(ctx, "", paymentlog.EventWebhookRejected, map[string]any{"reason": reason})
}

// confirmSaga marks the order paid, then decrements stock item by item.
func (s *PaymentService) confirmSaga(order *entity.Order, now time.Time, c entity.CheckoutCompleted) *coordinator.Orchestrator {
	before := *order
	steps := []coordinator.Step{
		coordinator.StepFunc{
			StepName: "mark_order_paid",
			Do: func(ctx context.Context) error {
				order.MarkPaid(now, entity.PaymentResult{
					ID:           c.SessionID,
					Status:       c.PaymentStatus,
					UpdateTime:   now.Format(time.RFC3339Nano),
					EmailAddress: c.CustomerEmail,
				})
				return s.orders.Update(ctx, order)
			},
			Undo: func(ctx context.Context) error {
				restored := before
				return s.orders.Update(ctx, &restored)
			},
		},
	}
	for _, item := range order.Items {
		steps = append(steps, coordinator.StepFunc{
			StepName: "adjust_stock:" + item.ProductID,
			Do: func(ctx context.Context) error {
				return s.products.AdjustStock(ctx, item.ProductID, -item.Quantity)
			},
			Undo: func(ctx context.Context) error {
				return s.products.AdjustStock(ctx, item.ProductID, item.Quantity)
			},
		})
	}
	return coordinator.NewOrchestrator("confirm_checkout", steps...)
}
