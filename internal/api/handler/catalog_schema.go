package handler

import (
	"github.com/keymint/storefront-system/internal/core/domain"
)

type tierOfferResponse struct {
	Price float64 `json:"price"`
}

// productResponse is the storefront view of a product. Offers contains an
// entry only for tiers that actually carry an offer descriptor, so a tier
// without one is never selectable client-side.
type productResponse struct {
	Name        string                       `json:"name"`
	Stock       int                          `json:"stock"`
	BasePrice   float64                      `json:"base_price"`
	Offers      map[string]tierOfferResponse `json:"offers"`
	ImageURL    string                       `json:"image_url"`
	Description string                       `json:"description"`
	InfoLinks   []string                     `json:"info_links"`
	Detected    bool                         `json:"detected"`
}

func toProductResponse(p *domain.Product) productResponse {
	offers := make(map[string]tierOfferResponse, len(p.Offers))
	for _, tier := range domain.Tiers {
		if offer, ok := p.Offer(tier); ok {
			offers[string(tier)] = tierOfferResponse{Price: offer.Price}
		}
	}
	return productResponse{
		Name:        p.Name,
		Stock:       p.Stock,
		BasePrice:   p.BasePrice,
		Offers:      offers,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		InfoLinks:   []string{p.InfoLinks[0], p.InfoLinks[1]},
		Detected:    p.Detected,
	}
}

type tierOfferRequest struct {
	Endpoint string  `json:"endpoint"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type upsertProductRequest struct {
	Name        string                       `json:"name"        validate:"required"`
	Stock       int                          `json:"stock"       validate:"gte=0"`
	BasePrice   float64                      `json:"base_price"  validate:"gte=0"`
	Offers      map[string]*tierOfferRequest `json:"offers"`
	ImageURL    string                       `json:"image_url"`
	Description string                       `json:"description"`
	InfoLinks   []string                     `json:"info_links"  validate:"max=2"`
	Detected    bool                         `json:"detected"`
}

type updateStockRequest struct {
	Stock int `json:"stock"`
}
