package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// AccountService exposes the admin account management operations plus
// order-history reads for the storefront.
type AccountService interface {
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	GetAccount(ctx context.Context, username string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, username string) error

	SetBalance(ctx context.Context, username string, balance float64) error
	SetRole(ctx context.Context, username string, role string) error

	// Orders returns the account's order history in chronological order.
	Orders(ctx context.Context, username string) ([]domain.Order, error)
}
