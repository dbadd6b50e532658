package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keymint/storefront-system/internal/core/domain"
	"github.com/keymint/storefront-system/internal/core/ports"
)

// AdminProductHandler exposes the admin product CRUD.
type AdminProductHandler struct {
	service ports.CatalogService
}

func NewAdminProductHandler(service ports.CatalogService) *AdminProductHandler {
	return &AdminProductHandler{service: service}
}

func toUpsertInput(req upsertProductRequest) ports.UpsertProductInput {
	offers := make(map[domain.DurationTier]*ports.TierOfferInput, len(req.Offers))
	for tier, offer := range req.Offers {
		if offer == nil {
			continue
		}
		offers[domain.DurationTier(tier)] = &ports.TierOfferInput{
			Endpoint: offer.Endpoint,
			Price:    offer.Price,
		}
	}

	var links [2]string
	for i := 0; i < len(req.InfoLinks) && i < 2; i++ {
		links[i] = req.InfoLinks[i]
	}

	return ports.UpsertProductInput{
		Name:        req.Name,
		Stock:       req.Stock,
		BasePrice:   req.BasePrice,
		Offers:      offers,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		InfoLinks:   links,
		Detected:    req.Detected,
	}
}

// Create handles POST /v1/admin/products.
//
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      upsertProductRequest  true  "Product fields"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/admin/products [post]
func (h *AdminProductHandler) Create(c echo.Context) error {
	var req upsertProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.service.CreateProduct(c.Request().Context(), toUpsertInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(product))
}

// Update handles PUT /v1/admin/products/:name.
//
// @Summary      Update a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string                true  "Product name"
// @Param        body  body      upsertProductRequest  true  "Product fields"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/admin/products/{name} [put]
func (h *AdminProductHandler) Update(c echo.Context) error {
	var req upsertProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Name = c.Param("name")
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.service.UpdateProduct(c.Request().Context(), toUpsertInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(product))
}

// Delete handles DELETE /v1/admin/products/:name.
//
// @Summary      Delete a product
// @Tags         admin
// @Security     BearerAuth
// @Param        name  path  string  true  "Product name"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/products/{name} [delete]
func (h *AdminProductHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("name")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStock handles PUT /v1/admin/products/:name/stock.
//
// @Summary      Set product stock
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string              true  "Product name"
// @Param        body  body      updateStockRequest  true  "New stock value"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/products/{name}/stock [put]
func (h *AdminProductHandler) UpdateStock(c echo.Context) error {
	var req updateStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.service.UpdateStock(c.Request().Context(), c.Param("name"), req.Stock); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
