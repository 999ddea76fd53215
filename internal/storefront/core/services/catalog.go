package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
)

// ProductInput is the admin-editable part of a product.
type ProductInput struct {
	Name           string            `json:"name" validate:"required,max=100"`
	Description    string            `json:"description" validate:"required"`
	Price          *decimal.Decimal  `json:"price" validate:"omitempty,gte=0"`
	Category       string            `json:"category" validate:"required"`
	Stock          int               `json:"stock" validate:"gte=0"`
	Images         []string          `json:"images" validate:"omitempty,dive,required"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications"`
}

type CatalogService struct {
	products  ports.ProductRepository
	images    ports.ImageHost
	validator *validation.Validator
	now       func() time.Time
}

// NewCatalogService builds the catalog service. images may be nil, in which
// case deleting a product leaves its hosted images in place.
func NewCatalogService(products ports.ProductRepository, images ports.ImageHost, v *validation.Validator) *CatalogService {
	return &CatalogService{
		products:  products,
		images:    images,
		validator: v,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *CatalogService) List(ctx context.Context, filter entity.ProductFilter) ([]entity.Product, error) {
	filter = filter.Normalize()
	filter.Query = strings.TrimSpace(filter.Query)
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := s.products.Get(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get product %s: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*entity.Product, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	p := &entity.Product{CreatedAt: s.now()}
	applyInput(p, in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: create product: %w", err)
	}
	slog.InfoContext(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(p, in)
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("product not found")
		}
		return nil, fmt.Errorf("catalog: update product %s: %w", id, err)
	}
	slog.InfoContext(ctx, "product updated", "product_id", p.ID)
	return p, nil
}

// Delete removes the product, then its hosted images best-effort.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("product not found")
		}
		return fmt.Errorf("catalog: delete product %s: %w", id, err)
	}
	slog.InfoContext(ctx, "product deleted", "product_id", id)

	if s.images == nil {
		return nil
	}
	for _, url := range p.Images {
		publicID := s.images.PublicID(url)
		if publicID == "" {
			continue
		}
		if err := s.images.Delete(ctx, publicID); err != nil {
			slog.WarnContext(ctx, "hosted image cleanup failed", "product_id", id, "public_id", publicID, "error", err)
		}
	}
	return nil
}

// validate runs the tag rules and adds the price presence check, which tags
// cannot express for a value where zero is legal.
func (s *CatalogService) validate(in ProductInput) error {
	err := s.validator.Struct(in)
	if in.Price != nil {
		return err
	}
	missing := apperr.FieldError{Field: "price", Message: "is required"}
	if e, ok := apperr.As(err); ok {
		e.Fields = append(e.Fields, missing)
		return e
	}
	if err != nil {
		return err
	}
	return apperr.Invalid("validation failed", missing)
}

func applyInput(p *entity.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = *in.Price
	p.Category = strings.TrimSpace(in.Category)
	p.Stock = in.Stock
	p.Images = in.Images
	p.Features = in.Features
	p.Specifications = in.Specifications
}
