package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keymint/storefront-system/internal/core/ports"
)

// OrderHandler serves the authenticated account's own order history.
type OrderHandler struct {
	service ports.AccountService
}

func NewOrderHandler(service ports.AccountService) *OrderHandler {
	return &OrderHandler{service: service}
}

// List handles GET /v1/orders.
//
// @Summary      List the authenticated account's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  orderListResponse
// @Router       /v1/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	username, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	orders, err := h.service.Orders(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orderListResponse{Orders: toOrderResponses(orders)})
}
