package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
	"github.com/jcmexdev/storefront/internal/storefront/infra/adapters/memory"
)

func catalogSeed() []entity.Product {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []entity.Product{
		{ID: "a", Name: "Wireless Headphones", Category: "audio", Price: decimal.NewFromInt(80), CreatedAt: base},
		{ID: "b", Name: "Bluetooth Speaker", Category: "audio", Price: decimal.NewFromInt(45), CreatedAt: base.Add(time.Hour)},
		{ID: "c", Name: "Phone Case", Category: "accessories", Price: decimal.NewFromInt(15), CreatedAt: base.Add(2 * time.Hour)},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCatalogPriceIsRequired(t *testing.T) {
	svc := NewCatalogService(memory.NewProductRepository(), nil, validation.New())

	_, err := svc.Create(context.Background(), ProductInput{Name: "Lamp", Description: "d", Category: "home"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, []apperr.FieldError{{Field: "price", Message: "is required"}}, e.Fields)

	free, err := svc.Create(context.Background(), ProductInput{Name: "Sticker", Description: "d", Category: "misc", Price: dec("0")})
	require.NoError(t, err)
	assert.True(t, free.Price.IsZero())
}

func ids(products []entity.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestCatalogListFilters(t *testing.T) {
	svc := NewCatalogService(memory.NewProductRepository(catalogSeed()...), nil, validation.New())
	ctx := context.Background()

	tests := []struct {
		name   string
		filter entity.ProductFilter
		want   []string
	}{
		{name: "everything", filter: entity.ProductFilter{}, want: []string{"a", "b", "c"}},
		{name: "all category marker", filter: entity.ProductFilter{Category: "all"}, want: []string{"a", "b", "c"}},
		{name: "category", filter: entity.ProductFilter{Category: "audio"}, want: []string{"a", "b"}},
		{name: "case-insensitive name", filter: entity.ProductFilter{Query: "PHONE"}, want: []string{"a", "c"}},
		{name: "both", filter: entity.ProductFilter{Category: "accessories", Query: "phone"}, want: []string{"c"}},
		{name: "no match", filter: entity.ProductFilter{Query: "laptop"}, want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestCatalogCreateValidates(t *testing.T) {
	repo := memory.NewProductRepository()
	svc := NewCatalogService(repo, nil, validation.New())

	_, err := svc.Create(context.Background(), ProductInput{
		Description: "no name",
		Price:       dec("-1"),
		Category:    "misc",
		Stock:       -2,
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalid, e.Kind)

	fields := map[string]string{}
	for _, fe := range e.Fields {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must not be negative", fields["price"])
	assert.Equal(t, "must not be negative", fields["stock"])

	all, err := repo.List(context.Background(), entity.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalogCreateUpdateGet(t *testing.T) {
	svc := NewCatalogService(memory.NewProductRepository(), nil, validation.New())
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{
		Name:        "  Desk Lamp ",
		Description: "LED lamp",
		Price:       dec("29.99"),
		Category:    "home",
		Stock:       4,
		Images:      []string{"https://img.example/ecommerce/lamp.jpg"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Desk Lamp", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := svc.Update(ctx, created.ID, ProductInput{
		Name:        "Desk Lamp",
		Description: "LED lamp, dimmable",
		Price:       dec("34.99"),
		Category:    "home",
		Stock:       9,
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "34.99", got.Price.StringFixed(2))
	assert.Equal(t, 9, got.Stock)

	_, err = svc.Update(ctx, "missing", ProductInput{Name: "x", Description: "y", Category: "z", Price: dec("0")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCatalogDeleteRemovesHostedImages(t *testing.T) {
	host := &fakeImageHost{failOn: "ecommerce/broken"}
	repo := memory.NewProductRepository(entity.Product{
		ID:   "p1",
		Name: "Lamp",
		Images: []string{
			"https://img.example/ecommerce/lamp.jpg",
			"https://elsewhere.example/lamp.jpg",
			"https://img.example/ecommerce/broken.png",
			"https://img.example/ecommerce/lamp-side.webp",
		},
	})
	svc := NewCatalogService(repo, host, validation.New())

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.Equal(t, []string{"ecommerce/lamp", "ecommerce/lamp-side"}, host.deleted)

	_, err := svc.Get(context.Background(), "p1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	err = svc.Delete(context.Background(), "p1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
