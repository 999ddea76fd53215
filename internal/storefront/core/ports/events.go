package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type EventPublisher interface {
	Publish(ctx context.Context, evt entity.Event) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, entity.Event) error { return nil }
