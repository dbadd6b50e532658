package mongo

import (
	"reflect"
	"testing"
	"time"

	"github.com/keymint/storefront-system/internal/core/domain"
)

// Round-tripping through the document types must not change a product or
// an order history. Timestamps are stored at second precision, so the
// fixtures use whole-second times.

func TestProductDocRoundTrip(t *testing.T) {
	created := time.Unix(1700000000, 0).UTC()
	original := &domain.Product{
		Name:      "vision",
		Stock:     7,
		BasePrice: 2.50,
		Offers: map[domain.DurationTier]domain.TierOffer{
			domain.Tier1Day:  {Endpoint: "https://issuer.example/day", Price: 3.50},
			domain.Tier30Day: {Endpoint: "https://issuer.example/month", Price: 10.00},
		},
		ImageURL:    "https://cdn.example/vision.png",
		Description: "external overlay",
		InfoLinks:   [2]string{"https://docs.example/a", "https://docs.example/b"},
		Detected:    true,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}

	got := toProduct(toProductDoc(original))
	if !reflect.DeepEqual(original, got) {
		t.Errorf("round trip changed the product:\n  in:  %+v\n  out: %+v", original, got)
	}
}

func TestProductDocRoundTrip_EmptyOffers(t *testing.T) {
	original := &domain.Product{Name: "bare", ImageURL: domain.PlaceholderImageURL}

	got := toProduct(toProductDoc(original))
	if got.Name != "bare" {
		t.Errorf("expected name bare, got %q", got.Name)
	}
	if len(got.Offers) != 0 {
		t.Errorf("expected no offers, got %+v", got.Offers)
	}
	if !got.CreatedAt.IsZero() {
		t.Errorf("zero time must survive the round trip, got %v", got.CreatedAt)
	}
}

func TestOrderDocsRoundTrip(t *testing.T) {
	created := time.Unix(1700000000, 0).UTC()
	original := []domain.Order{
		{
			ID:           "11111111-1111-1111-1111-111111111111",
			ProductLabel: "vision",
			Tier:         domain.Tier7Day,
			Quantity:     1,
			UnitCost:     5.25,
			TotalCost:    5.25,
			Status:       domain.StatusCompleted,
			Key:          "KEY-1",
			CreatedAt:    created,
		},
		{
			ID:           "22222222-2222-2222-2222-222222222222",
			ProductLabel: "vision",
			Tier:         domain.Tier30Day,
			Quantity:     1,
			UnitCost:     10.00,
			TotalCost:    10.00,
			Status:       domain.StatusCompleted,
			Key:          "KEY-2",
			CreatedAt:    created,
		},
	}

	doc := accountDoc{Username: "alice", Orders: toOrderDocs(original)}
	got := toAccount(doc)

	if len(got.Orders) != len(original) {
		t.Fatalf("expected %d orders, got %d", len(original), len(got.Orders))
	}
	for i := range original {
		if !reflect.DeepEqual(original[i], got.Orders[i]) {
			t.Errorf("order %d changed:\n  in:  %+v\n  out: %+v", i, original[i], got.Orders[i])
		}
	}
}
