package ports

import (
	"context"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// KeyIssuer mints one usable key per call from the remote issuance
// endpoint. endpoint may be empty, in which case the client's configured
// default URL is used. A transport failure or an explicit service error
// both surface as a non-nil error; no retries are attempted.
type KeyIssuer interface {
	Issue(ctx context.Context, endpoint, productName string, tier domain.DurationTier) (string, error)
}

// PurchaseDedup marks idempotency keys of purchase attempts so a replayed
// submission is rejected instead of double-charging.
type PurchaseDedup interface {
	IsDuplicate(ctx context.Context, username, idempotencyKey string) (bool, error)
	Mark(ctx context.Context, username, idempotencyKey string) error
}
