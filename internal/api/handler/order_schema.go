package handler

import (
	"time"

	"github.com/keymint/storefront-system/internal/core/domain"
)

type orderResponse struct {
	ID           string  `json:"id"`
	ProductLabel string  `json:"product_label"`
	Tier         string  `json:"tier"`
	Quantity     int     `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	TotalCost    float64 `json:"total_cost"`
	Status       string  `json:"status"`
	Key          string  `json:"key"`
	CreatedAt    string  `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type accountDetailResponse struct {
	Username string          `json:"username"`
	Role     string          `json:"role"`
	Balance  float64         `json:"balance"`
	Orders   []orderResponse `json:"orders"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		ProductLabel: o.ProductLabel,
		Tier:         string(o.Tier),
		Quantity:     o.Quantity,
		UnitCost:     o.UnitCost,
		TotalCost:    o.TotalCost,
		Status:       string(o.Status),
		Key:          o.Key,
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toAccountDetailResponse(a *domain.Account) accountDetailResponse {
	return accountDetailResponse{
		Username: a.Username,
		Role:     a.Role,
		Balance:  a.Balance,
		Orders:   toOrderResponses(a.Orders),
	}
}
