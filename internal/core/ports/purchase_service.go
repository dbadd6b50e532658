package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// PurchaseInput carries a single purchase attempt. Quantities maps each
// selected duration tier to the number of keys wanted; absent tiers count
// as zero.
type PurchaseInput struct {
	Username       string
	ProductName    string
	Quantities     map[domain.DurationTier]int
	IdempotencyKey string
}

// PurchaseResult is returned after a fully committed purchase.
type PurchaseResult struct {
	Keys       []string
	Orders     []domain.Order
	TotalCost  float64
	NewBalance float64
}

// PurchaseService runs the reserve-balance / issue-keys / commit-or-refund
// workflow.
type PurchaseService interface {
	Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error)
}
