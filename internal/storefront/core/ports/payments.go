package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// PaymentGateway is the hosted payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req entity.CheckoutSessionRequest) (*entity.CheckoutSession, error)
}

// WebhookVerifier authenticates and decodes provider notifications.
type WebhookVerifier interface {
	ParseEvent(payload []byte, signature string) (*entity.PaymentEvent, error)
}
