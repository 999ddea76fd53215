package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type OrderRepository interface {
	// Create assigns o.ID and persists the order.
	Create(ctx context.Context, o *entity.Order) error
	Get(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
}
