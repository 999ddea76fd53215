package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront/internal/pkg/auth"
	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// OrderQuery is the read side of orders for signed-in users.
type OrderQuery struct {
	orders ports.OrderRepository
}

func NewOrderQuery(orders ports.OrderRepository) *OrderQuery {
	return &OrderQuery{orders: orders}
}

func (q *OrderQuery) ListMine(ctx context.Context, principal *auth.Principal) ([]entity.Order, error) {
	if principal == nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	orders, err := q.orders.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("orders: list for %s: %w", principal.UserID, err)
	}
	return orders, nil
}

// Get returns the order when the caller owns it or is an admin. Orders of
// other users are reported as missing.
func (q *OrderQuery) Get(ctx context.Context, principal *auth.Principal, id string) (*entity.Order, error) {
	if principal == nil {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	o, err := q.orders.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("orders: get %s: %w", id, err)
	}
	if o.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperr.NotFound("Order not found")
	}
	return o, nil
}
