package domain

import (
	"errors"
	"time"
)

// DurationTier is one of the fixed access-length offerings a product may
// expose, each with its own price and issuance endpoint.
type DurationTier string

const (
	Tier1Day  DurationTier = "1_day"
	Tier7Day  DurationTier = "7_day"
	Tier30Day DurationTier = "30_day"
)

// Tiers lists all duration tiers in display order. Iteration over product
// offers always follows this order so purchase lines are deterministic.
var Tiers = []DurationTier{Tier1Day, Tier7Day, Tier30Day}

var ErrProductNotFound = errors.New("product not found")
var ErrProductExists = errors.New("product already exists")
var ErrTierNotOffered = errors.New("duration tier not offered")
var ErrNegativeStock = errors.New("stock must not be negative")
var ErrNegativePrice = errors.New("price must not be negative")
var ErrInsufficientStock = errors.New("insufficient stock")

// ValidTier reports whether t is one of the fixed duration tiers.
func ValidTier(t DurationTier) bool {
	for _, known := range Tiers {
		if t == known {
			return true
		}
	}
	return false
}

// PlaceholderImageURL is substituted when a product has no image set.
const PlaceholderImageURL = "/static/img/product-placeholder.png"

// TierOffer describes a single purchasable duration tier: the remote
// issuance endpoint that mints keys for it and its price.
type TierOffer struct {
	Endpoint string  `json:"endpoint"`
	Price    float64 `json:"price"`
}

// Product is a catalog entry. Name acts as the primary key. Offers holds
// an optional TierOffer per fixed duration tier; a missing entry means the
// tier is not sold for this product.
type Product struct {
	Name        string                     `json:"name"`
	Stock       int                        `json:"stock"`
	BasePrice   float64                    `json:"base_price"`
	Offers      map[DurationTier]TierOffer `json:"offers"`
	ImageURL    string                     `json:"image_url"`
	Description string                     `json:"description"`
	InfoLinks   [2]string                  `json:"info_links"`
	Detected    bool                       `json:"detected"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// Offer returns the offer for tier, if the product sells that tier.
func (p *Product) Offer(tier DurationTier) (TierOffer, bool) {
	offer, ok := p.Offers[tier]
	return offer, ok
}

// Purchasable reports whether at least one duration tier is offered.
// Products without any priced tier cannot be selected for purchase.
func (p *Product) Purchasable() bool {
	return len(p.Offers) > 0
}
