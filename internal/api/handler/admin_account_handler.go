package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keymint/storefront-system/internal/core/ports"
)

// AdminAccountHandler exposes the admin account management operations.
type AdminAccountHandler struct {
	service ports.AccountService
}

func NewAdminAccountHandler(service ports.AccountService) *AdminAccountHandler {
	return &AdminAccountHandler{service: service}
}

type setBalanceRequest struct {
	Balance float64 `json:"balance"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin reseller"`
}

type accountListResponse struct {
	Accounts []accountResponse `json:"accounts"`
}

// List handles GET /v1/admin/accounts.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountListResponse
// @Router       /v1/admin/accounts [get]
func (h *AdminAccountHandler) List(c echo.Context) error {
	accounts, err := h.service.ListAccounts(c.Request().Context())
	if err != nil {
		return err
	}

	resp := accountListResponse{Accounts: make([]accountResponse, 0, len(accounts))}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, *toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/admin/accounts/:username.
//
// @Summary      Get an account with its order history
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Account username"
// @Success      200       {object}  accountDetailResponse
// @Failure      404       {object}  map[string]string
// @Router       /v1/admin/accounts/{username} [get]
func (h *AdminAccountHandler) Get(c echo.Context) error {
	account, err := h.service.GetAccount(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountDetailResponse(account))
}

// SetBalance handles PUT /v1/admin/accounts/:username/balance.
//
// @Summary      Set account balance
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        username  path  string             true  "Account username"
// @Param        body      body  setBalanceRequest  true  "New balance"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/accounts/{username}/balance [put]
func (h *AdminAccountHandler) SetBalance(c echo.Context) error {
	var req setBalanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.SetBalance(c.Request().Context(), c.Param("username"), req.Balance); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetRole handles PUT /v1/admin/accounts/:username/role.
//
// @Summary      Set account role
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        username  path  string          true  "Account username"
// @Param        body      body  setRoleRequest  true  "New role"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/accounts/{username}/role [put]
func (h *AdminAccountHandler) SetRole(c echo.Context) error {
	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.SetRole(c.Request().Context(), c.Param("username"), req.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/admin/accounts/:username.
//
// @Summary      Delete an account
// @Tags         admin
// @Security     BearerAuth
// @Param        username  path  string  true  "Account username"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/accounts/{username} [delete]
func (h *AdminAccountHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteAccount(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
