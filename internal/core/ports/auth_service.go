package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// RememberStore persists the last identity that logged in from a device,
// used to pre-fill the login form.
type RememberStore interface {
	Remember(ctx context.Context, deviceID, username string) error
	Recall(ctx context.Context, deviceID string) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
}
