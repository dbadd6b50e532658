package domain

import (
	"errors"
	"time"
)

// OrderStatus is the lifecycle state of an order. Orders are created only
// at purchase commit and never mutated afterwards, so the only modeled
// status is Completed.
type OrderStatus string

const StatusCompleted OrderStatus = "Completed"

var ErrNothingSelected = errors.New("no duration tier selected")
var ErrInvalidQuantity = errors.New("quantity must not be negative")
var ErrIssuanceFailed = errors.New("key issuance failed")
var ErrDuplicatePurchase = errors.New("duplicate purchase request")

// Order records one issued key. Exactly one Order is appended per key, so
// Quantity is always 1; the field is kept so historical totals stay
// self-describing. Immutable once created.
type Order struct {
	ID           string       `json:"id"`
	ProductLabel string       `json:"product_label"`
	Tier         DurationTier `json:"tier"`
	Quantity     int          `json:"quantity"`
	UnitCost     float64      `json:"unit_cost"`
	TotalCost    float64      `json:"total_cost"`
	Status       OrderStatus  `json:"status"`
	Key          string       `json:"key"`
	CreatedAt    time.Time    `json:"created_at"`
}
