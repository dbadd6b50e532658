package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
)

// CatalogService implements catalog reads and the admin product CRUD.
// Every mutation validates numeric fields before touching the repository,
// so a rejected edit leaves the stored product untouched.
type CatalogService struct {
	repo   ports.ProductRepository
	logger zerolog.Logger
}

func NewCatalogService(repo ports.ProductRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, name string) (*domain.Product, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *CatalogService) CreateProduct(ctx context.Context, input ports.UpsertProductInput) (*domain.Product, error) {
	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product", product.Name).Int("stock", product.Stock).Msg("product created")
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, input ports.UpsertProductInput) (*domain.Product, error) {
	existing, err := s.repo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	product, err := buildProduct(input)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product", product.Name).Msg("product updated")
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info().Str("product", name).Msg("product deleted")
	return nil
}

func (s *CatalogService) UpdateStock(ctx context.Context, name string, stock int) error {
	if stock < 0 {
		return domain.ErrNegativeStock
	}
	if _, err := s.repo.FindByName(ctx, name); err != nil {
		return err
	}
	if err := s.repo.SetStock(ctx, name, stock); err != nil {
		return err
	}
	s.logger.Info().Str("product", name).Int("stock", stock).Msg("stock updated")
	return nil
}

// buildProduct validates the input and assembles a Product. The fixed tier
// enumeration is the only source of offer slots; unknown tier names in the
// input map are rejected.
func buildProduct(input ports.UpsertProductInput) (*domain.Product, error) {
	if input.Stock < 0 {
		return nil, domain.ErrNegativeStock
	}
	if input.BasePrice < 0 {
		return nil, domain.ErrNegativePrice
	}

	offers := make(map[domain.DurationTier]domain.TierOffer)
	for tier, offer := range input.Offers {
		if offer == nil {
			continue
		}
		if !domain.ValidTier(tier) {
			return nil, domain.ErrTierNotOffered
		}
		if offer.Price < 0 {
			return nil, domain.ErrNegativePrice
		}
		offers[tier] = domain.TierOffer{Endpoint: offer.Endpoint, Price: offer.Price}
	}

	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = domain.PlaceholderImageURL
	}

	return &domain.Product{
		Name:        input.Name,
		Stock:       input.Stock,
		BasePrice:   input.BasePrice,
		Offers:      offers,
		ImageURL:    imageURL,
		Description: input.Description,
		InfoLinks:   input.InfoLinks,
		Detected:    input.Detected,
	}, nil
}
