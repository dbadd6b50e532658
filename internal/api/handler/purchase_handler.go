package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
)

// PurchaseHandler runs purchases for the authenticated account.
type PurchaseHandler struct {
	service ports.PurchaseService
}

func NewPurchaseHandler(service ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

type purchaseRequest struct {
	ProductName string         `json:"product_name" validate:"required"`
	Quantities  map[string]int `json:"quantities"   validate:"required"`
}

type purchaseResponse struct {
	Keys       []string        `json:"keys"`
	Orders     []orderResponse `json:"orders"`
	TotalCost  float64         `json:"total_cost"`
	NewBalance float64         `json:"new_balance"`
}

// Create handles POST /v1/purchases. The purchase is charged to the
// authenticated account; the Idempotency-Key header guards against
// double-submits.
//
// @Summary      Buy keys for a product
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string           false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      purchaseRequest  true   "Product and per-tier quantities"
// @Success      201              {object}  purchaseResponse
// @Failure      400              {object}  map[string]string
// @Failure      402              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Failure      502              {object}  map[string]string
// @Router       /v1/purchases [post]
func (h *PurchaseHandler) Create(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	quantities := make(map[domain.DurationTier]int, len(req.Quantities))
	for tier, qty := range req.Quantities {
		quantities[domain.DurationTier(tier)] = qty
	}

	result, err := h.service.Purchase(c.Request().Context(), ports.PurchaseInput{
		Username:       username,
		ProductName:    req.ProductName,
		Quantities:     quantities,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, purchaseResponse{
		Keys:       result.Keys,
		Orders:     toOrderResponses(result.Orders),
		TotalCost:  result.TotalCost,
		NewBalance: result.NewBalance,
	})
}
