package ports

import (
	"context"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

// ProductRepository is the catalog store.
type ProductRepository interface {
	List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error)
	// FindByIDs fetches all referenced products in a single query. Unknown
	// or malformed ids are silently absent from the result.
	FindByIDs(ctx context.Context, ids []string) ([]entity.Product, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	// AdjustStock adds delta to the product's stock without bounds checks.
	AdjustStock(ctx context.Context, id string, delta int) error
}
