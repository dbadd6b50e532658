package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keymint/storefront-system/internal/core/ports"
)

// CatalogHandler serves the storefront catalog reads.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

type productListResponse struct {
	Products []productResponse `json:"products"`
}

// List handles GET /v1/products.
//
// @Summary      List catalog products
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  productListResponse
// @Router       /v1/products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}

	resp := productListResponse{Products: make([]productResponse, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/products/:name.
//
// @Summary      Get a product by name
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Product name"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  map[string]string
// @Router       /v1/products/{name} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	product, err := h.service.GetProduct(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(product))
}
