package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

var errNoSecret = errors.New("webhook secret not configured")

// EventParser verifies Stripe-Signature headers and decodes events.
type EventParser struct {
	secret string
}

var _ ports.WebhookVerifier = (*EventParser)(nil)

func NewEventParser(secret string) *EventParser {
	return &EventParser{secret: strings.TrimSpace(secret)}
}

type checkoutSessionPayload struct {
	ID              string            `json:"id"`
	PaymentStatus   string            `json:"payment_status"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

func (p *EventParser) ParseEvent(payload []byte, signature string) (*entity.PaymentEvent, error) {
	if p.secret == "" {
		return nil, errNoSecret
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}

	out := &entity.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != entity.EventCheckoutCompleted {
		return out, nil
	}
	if event.Data == nil {
		return nil, fmt.Errorf("stripe: event %s has no data", event.ID)
	}

	var session checkoutSessionPayload
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("stripe: decode checkout.session: %w", err)
	}
	completed := &entity.CheckoutCompleted{
		SessionID:     session.ID,
		OrderID:       session.Metadata[metadataOrderID],
		PaymentStatus: session.PaymentStatus,
	}
	if session.CustomerDetails != nil {
		completed.CustomerEmail = session.CustomerDetails.Email
	}
	out.Checkout = completed
	return out, nil
}
