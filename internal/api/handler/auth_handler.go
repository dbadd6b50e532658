package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
)

// deviceIDHeader identifies the browser/device for login-form prefill.
const deviceIDHeader = "X-Device-ID"

type AuthHandler struct {
	authService ports.AuthService
	remember    ports.RememberStore
}

func NewAuthHandler(authService ports.AuthService, remember ports.RememberStore) *AuthHandler {
	return &AuthHandler{authService: authService, remember: remember}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin reseller"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type accountResponse struct {
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Balance  float64 `json:"balance"`
}

type authResponse struct {
	Token   string           `json:"token,omitempty"`
	Account *accountResponse `json:"account,omitempty"`
}

type rememberedResponse struct {
	Username string `json:"username"`
}

func toAccountResponse(a *domain.Account) *accountResponse {
	return &accountResponse{Username: a.Username, Role: a.Role, Balance: a.Balance}
}

// Register creates a new reseller account.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Account: toAccountResponse(account)})
}

// Login authenticates an account and returns a JWT token. On success the
// calling device's remembered identity is updated for login prefill.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string        false  "Device identifier for login prefill"
// @Param        body         body      loginRequest  true   "Login credentials"
// @Success      200          {object}  authResponse
// @Failure      401          {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, account, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	if deviceID := c.Request().Header.Get(deviceIDHeader); deviceID != "" && h.remember != nil {
		// Best effort; a failed write only loses the prefill.
		_ = h.remember.Remember(c.Request().Context(), deviceID, account.Username)
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, Account: toAccountResponse(account)})
}

// Remembered returns the last identity that logged in from this device.
//
// @Summary      Remembered login identity
// @Tags         auth
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identifier"
// @Success      200          {object}  rememberedResponse
// @Router       /auth/remembered [get]
func (h *AuthHandler) Remembered(c echo.Context) error {
	deviceID := c.Request().Header.Get(deviceIDHeader)

	username := ""
	if h.remember != nil {
		var err error
		username, err = h.remember.Recall(c.Request().Context(), deviceID)
		if err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, rememberedResponse{Username: username})
}
