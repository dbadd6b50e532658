package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PaymentHandler surfaces the static top-up redirect. No parameters are
// passed to the payment collaborator and no callback exists; balances are
// credited manually by an admin.
type PaymentHandler struct {
	topUpURL string
}

func NewPaymentHandler(topUpURL string) *PaymentHandler {
	return &PaymentHandler{topUpURL: topUpURL}
}

type topUpResponse struct {
	URL string `json:"url"`
}

// TopUp handles GET /v1/payment/topup.
//
// @Summary      Get the balance top-up redirect URL
// @Tags         payment
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  topUpResponse
// @Router       /v1/payment/topup [get]
func (h *PaymentHandler) TopUp(c echo.Context) error {
	return c.JSON(http.StatusOK, topUpResponse{URL: h.topUpURL})
}
