package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, name string) error

	// SetStock overwrites the stock counter (admin operation).
	SetStock(ctx context.Context, name string, stock int) error
	// AdjustStock atomically adds delta to stock, guarded so the result
	// cannot go below zero. Returns domain.ErrInsufficientStock when the
	// guard fails.
	AdjustStock(ctx context.Context, name string, delta int) error
}
