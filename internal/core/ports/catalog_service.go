package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// TierOfferInput is an optional offer for one duration tier. A nil entry in
// UpsertProductInput.Offers means the tier is not sold.
type TierOfferInput struct {
	Endpoint string
	Price    float64
}

// UpsertProductInput carries all editable product fields for create/edit.
type UpsertProductInput struct {
	Name        string
	Stock       int
	BasePrice   float64
	Offers      map[domain.DurationTier]*TierOfferInput
	ImageURL    string
	Description string
	InfoLinks   [2]string
	Detected    bool
}

// CatalogService exposes catalog reads plus the admin product CRUD.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, name string) (*domain.Product, error)

	CreateProduct(ctx context.Context, input UpsertProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, input UpsertProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, name string) error
	UpdateStock(ctx context.Context, name string, stock int) error
}
