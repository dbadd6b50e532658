package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
	"github.com/keymint/storefront-system/internal/pkg/metrics"
)

// purchaseLine is one key unit to issue: the tier it belongs to and the
// offer it was priced against.
type purchaseLine struct {
	tier  domain.DurationTier
	offer domain.TierOffer
}

// PurchaseService runs the purchase workflow: validate the selection,
// reserve the balance by debiting it up front, issue keys one at a time
// against the remote endpoint, then either commit stock/orders or refund
// the full reserved amount.
//
// Refund policy: on any mid-issuance failure the entire reserved total is
// re-credited and keys issued before the failure are discarded, never
// recorded as orders. The discarded keys are logged and counted so the
// loss stays observable.
type PurchaseService struct {
	accounts ports.AccountRepository
	products ports.ProductRepository
	issuer   ports.KeyIssuer
	dedup    ports.PurchaseDedup
	logger   zerolog.Logger
}

func NewPurchaseService(
	accounts ports.AccountRepository,
	products ports.ProductRepository,
	issuer ports.KeyIssuer,
	dedup ports.PurchaseDedup,
	logger zerolog.Logger,
) *PurchaseService {
	return &PurchaseService{
		accounts: accounts,
		products: products,
		issuer:   issuer,
		dedup:    dedup,
		logger:   logger,
	}
}

func (s *PurchaseService) Purchase(ctx context.Context, input ports.PurchaseInput) (*ports.PurchaseResult, error) {
	// 1. Replay guard. A replayed idempotency key means the client already
	// submitted this exact purchase; reject instead of double-charging.
	if input.IdempotencyKey != "" && s.dedup != nil {
		isDup, err := s.dedup.IsDuplicate(ctx, input.Username, input.IdempotencyKey)
		if err != nil {
			s.logger.Warn().Err(err).Str("username", input.Username).Msg("purchase dedup check failed, processing anyway")
		} else if isDup {
			metrics.PurchaseFailuresTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicatePurchase
		}
	}

	// 2. Resolve the collaborators. Validation failures here mutate nothing.
	account, err := s.accounts.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByName(ctx, input.ProductName)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() {
		return nil, domain.ErrTierNotOffered
	}

	lines, totalCost, err := buildLines(product, input.Quantities)
	if err != nil {
		return nil, err
	}
	if product.Stock < len(lines) {
		return nil, domain.ErrInsufficientStock
	}
	if !account.CanAfford(totalCost) {
		metrics.PurchaseFailuresTotal.WithLabelValues("insufficient_balance").Inc()
		return nil, domain.ErrInsufficientBalance
	}

	// 3. Reserve funds. The debit is conditional on the stored balance still
	// covering the total, so a stale read above cannot drive it negative.
	if err := s.accounts.DebitBalance(ctx, input.Username, totalCost); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			metrics.PurchaseFailuresTotal.WithLabelValues("insufficient_balance").Inc()
		}
		return nil, err
	}

	if input.IdempotencyKey != "" && s.dedup != nil {
		if markErr := s.dedup.Mark(ctx, input.Username, input.IdempotencyKey); markErr != nil {
			s.logger.Warn().Err(markErr).Str("username", input.Username).Msg("failed to mark purchase idempotency key")
		}
	}

	// 4. Issue keys strictly sequentially, one remote call per key. The
	// first failure aborts the remaining loop.
	keys := make([]string, 0, len(lines))
	for _, line := range lines {
		start := time.Now()
		key, issueErr := s.issuer.Issue(ctx, line.offer.Endpoint, product.Name, line.tier)
		metrics.KeyIssuanceDuration.WithLabelValues(string(line.tier)).Observe(time.Since(start).Seconds())
		if issueErr != nil {
			s.refund(ctx, input.Username, totalCost, len(keys))
			s.logger.Error().Err(issueErr).
				Str("username", input.Username).
				Str("product", product.Name).
				Str("tier", string(line.tier)).
				Int("keys_issued_before_failure", len(keys)).
				Msg("key issuance failed, purchase refunded")
			metrics.PurchaseFailuresTotal.WithLabelValues("issuance").Inc()
			return nil, fmt.Errorf("%w: %v", domain.ErrIssuanceFailed, issueErr)
		}
		keys = append(keys, key)
		metrics.KeysIssuedTotal.WithLabelValues(string(line.tier)).Inc()
	}

	// 5. Commit: decrement stock and append one Completed order per key.
	if err := s.products.AdjustStock(ctx, product.Name, -len(lines)); err != nil {
		s.refund(ctx, input.Username, totalCost, len(keys))
		metrics.PurchaseFailuresTotal.WithLabelValues("commit").Inc()
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	now := time.Now().UTC()
	orders := make([]domain.Order, 0, len(lines))
	for i, line := range lines {
		orders = append(orders, domain.Order{
			ID:           uuid.NewString(),
			ProductLabel: product.Name,
			Tier:         line.tier,
			Quantity:     1,
			UnitCost:     line.offer.Price,
			TotalCost:    line.offer.Price,
			Status:       domain.StatusCompleted,
			Key:          keys[i],
			CreatedAt:    now,
		})
	}
	if err := s.accounts.AppendOrders(ctx, input.Username, orders); err != nil {
		// Stock is already decremented and funds spent; surface the error
		// rather than inventing a rollback the storage layer cannot honor.
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to record orders after issuance")
		metrics.PurchaseFailuresTotal.WithLabelValues("commit").Inc()
		return nil, fmt.Errorf("record orders: %w", err)
	}

	metrics.PurchasesCommittedTotal.WithLabelValues(product.Name).Inc()
	s.logger.Info().
		Str("username", input.Username).
		Str("product", product.Name).
		Int("keys", len(keys)).
		Float64("total_cost", totalCost).
		Msg("purchase committed")

	return &ports.PurchaseResult{
		Keys:       keys,
		Orders:     orders,
		TotalCost:  totalCost,
		NewBalance: account.Balance - totalCost,
	}, nil
}

// refund re-credits the entire reserved amount. issuedBeforeFailure counts
// keys the remote service already minted in this attempt; they are lost to
// the storefront and only surfaced through logs and the leak counter.
func (s *PurchaseService) refund(ctx context.Context, username string, totalCost float64, issuedBeforeFailure int) {
	if err := s.accounts.CreditBalance(ctx, username, totalCost); err != nil {
		s.logger.Error().Err(err).
			Str("username", username).
			Float64("amount", totalCost).
			Msg("refund failed, balance left debited")
		return
	}
	metrics.RefundsTotal.Inc()
	if issuedBeforeFailure > 0 {
		metrics.KeysLeakedTotal.Add(float64(issuedBeforeFailure))
		s.logger.Warn().
			Str("username", username).
			Int("leaked_keys", issuedBeforeFailure).
			Msg("keys issued before failure were discarded")
	}
}

// buildLines expands the per-tier quantities into one line per key unit,
// walking tiers in their fixed display order. A tier with quantity > 0
// must carry an offer descriptor; tiers absent from the product are not
// selectable.
func buildLines(product *domain.Product, quantities map[domain.DurationTier]int) ([]purchaseLine, float64, error) {
	var lines []purchaseLine
	var total float64

	for tier, qty := range quantities {
		if !domain.ValidTier(tier) {
			return nil, 0, domain.ErrTierNotOffered
		}
		if qty < 0 {
			return nil, 0, domain.ErrInvalidQuantity
		}
	}

	for _, tier := range domain.Tiers {
		qty := quantities[tier]
		if qty == 0 {
			continue
		}
		offer, ok := product.Offer(tier)
		if !ok {
			return nil, 0, domain.ErrTierNotOffered
		}
		for i := 0; i < qty; i++ {
			lines = append(lines, purchaseLine{tier: tier, offer: offer})
		}
		total += offer.Price * float64(qty)
	}

	if len(lines) == 0 {
		return nil, 0, domain.ErrNothingSelected
	}
	return lines, total, nil
}
