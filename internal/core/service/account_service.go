package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
)

// AccountService implements admin account management and order-history
// reads. Field-level updates are validated first and persisted
// immediately; there are no cross-entity transactions.
type AccountService struct {
	repo   ports.AccountRepository
	logger zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, logger: logger}
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.List(ctx)
}

func (s *AccountService) GetAccount(ctx context.Context, username string) (*domain.Account, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Msg("account deleted")
	return nil
}

func (s *AccountService) SetBalance(ctx context.Context, username string, balance float64) error {
	if balance < 0 {
		return domain.ErrNegativeAmount
	}
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return err
	}
	if err := s.repo.SetBalance(ctx, username, balance); err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Float64("balance", balance).Msg("balance updated")
	return nil
}

func (s *AccountService) SetRole(ctx context.Context, username string, role string) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		return err
	}
	if err := s.repo.SetRole(ctx, username, role); err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Str("role", role).Msg("role updated")
	return nil
}

func (s *AccountService) Orders(ctx context.Context, username string) ([]domain.Order, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return account.Orders, nil
}
