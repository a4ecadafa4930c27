package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/shopfront/shopfront/internal/domain/product"
)

type productPayload struct {
	Name          string          `json:"name" validate:"required,min=1"`
	Images        []string        `json:"images" validate:"required,min=1,dive,url"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellPrice     decimal.Decimal `json:"sellPrice"`
}

// priceFields checks the non-negativity constraints the validate tags cannot
// express on decimals.
func (p *productPayload) priceFields() map[string]string {
	fields := make(map[string]string)
	if p.PurchasePrice.IsNegative() {
		fields["purchasePrice"] = "cannot be negative"
	}
	if p.SellPrice.IsNegative() {
		fields["sellPrice"] = "cannot be negative"
	}
	return fields
}

type productResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	PurchasePrice float64   `json:"purchasePrice"`
	SellPrice     float64   `json:"sellPrice"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		Name:          p.Name,
		PurchasePrice: p.PurchasePrice.InexactFloat64(),
		SellPrice:     p.SellPrice.InexactFloat64(),
		Images:        p.Images,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *Handler) listProducts(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) getProduct(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	p, err := h.products.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(*p))
}

func (h *Handler) createProduct(c echo.Context) error {
	var payload productPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}
	if fields := payload.priceFields(); len(fields) > 0 {
		return h.respondError(c, &ValidationError{Fields: fields})
	}

	p := product.Product{
		Name:          payload.Name,
		PurchasePrice: payload.PurchasePrice,
		SellPrice:     payload.SellPrice,
		Images:        payload.Images,
	}
	if err := h.products.Create(c.Request().Context(), &p); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	var payload productPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}
	if fields := payload.priceFields(); len(fields) > 0 {
		return h.respondError(c, &ValidationError{Fields: fields})
	}

	p := product.Product{
		ID:            id,
		Name:          payload.Name,
		PurchasePrice: payload.PurchasePrice,
		SellPrice:     payload.SellPrice,
		Images:        payload.Images,
	}
	if err := h.products.Update(c.Request().Context(), &p); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.products.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
