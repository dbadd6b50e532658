package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts and their
// embedded order histories.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Delete(ctx context.Context, username string) error

	// SetBalance overwrites the balance (admin operation).
	SetBalance(ctx context.Context, username string, balance float64) error
	// SetRole overwrites the role (admin operation).
	SetRole(ctx context.Context, username string, role string) error

	// DebitBalance atomically subtracts amount, guarded by balance >= amount.
	// Returns domain.ErrInsufficientBalance when the guard fails; nothing is
	// mutated in that case.
	DebitBalance(ctx context.Context, username string, amount float64) error
	// CreditBalance atomically adds amount back (the refund path).
	CreditBalance(ctx context.Context, username string, amount float64) error

	// AppendOrders appends orders to the account's history, preserving order.
	AppendOrders(ctx context.Context, username string, orders []domain.Order) error
}
