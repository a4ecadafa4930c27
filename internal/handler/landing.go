package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/shopfront/internal/domain/landing"
	"github.com/shopfront/shopfront/internal/domain/order"
)

type landingFAQPayload struct {
	Question string `json:"question" validate:"required,min=1"`
	Answer   string `json:"answer" validate:"required,min=1"`
}

type landingProductPayload struct {
	ProductID   int64               `json:"productId" validate:"required,gt=0"`
	Description string              `json:"description" validate:"required,min=1"`
	FAQs        []landingFAQPayload `json:"faqs" validate:"required,min=1,dive"`
}

type landingPagePayload struct {
	Name                string                  `json:"name" validate:"required,min=1"`
	Slug                string                  `json:"slug" validate:"required,min=1"`
	LandingPageProducts []landingProductPayload `json:"landingPageProducts" validate:"required,min=1,dive"`
}

type landingFAQResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type landingProductResponse struct {
	ProductID   int64                `json:"productId"`
	Product     *productResponse     `json:"product,omitempty"`
	Description string               `json:"description"`
	FAQs        []landingFAQResponse `json:"faqs"`
}

type landingPageResponse struct {
	ID                  int64                    `json:"id"`
	Name                string                   `json:"name"`
	Slug                string                   `json:"slug"`
	LandingPageProducts []landingProductResponse `json:"landingPageProducts"`
	CreatedAt           time.Time                `json:"createdAt"`
}

func toLandingPageResponse(p landing.Page) landingPageResponse {
	products := make([]landingProductResponse, len(p.Products))
	for i, lp := range p.Products {
		faqs := make([]landingFAQResponse, len(lp.FAQs))
		for j, faq := range lp.FAQs {
			faqs[j] = landingFAQResponse{Question: faq.Question, Answer: faq.Answer}
		}

		products[i] = landingProductResponse{
			ProductID:   lp.ProductID,
			Description: lp.Description,
			FAQs:        faqs,
		}
		if lp.Product != nil {
			resp := toProductResponse(*lp.Product)
			products[i].Product = &resp
		}
	}

	return landingPageResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Slug:                p.Slug,
		LandingPageProducts: products,
		CreatedAt:           p.CreatedAt,
	}
}

// getLandingPageBySlug serves the public storefront page.
func (h *Handler) getLandingPageBySlug(c echo.Context) error {
	page, err := h.pages.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toLandingPageResponse(*page))
}

func (h *Handler) listLandingPages(c echo.Context) error {
	pages, err := h.pages.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]landingPageResponse, len(pages))
	for i, p := range pages {
		out[i] = toLandingPageResponse(p)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) createLandingPage(c echo.Context) error {
	var payload landingPagePayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}

	// Verify every referenced product exists before writing anything, in the
	// same batched style as order pricing.
	ids := make([]int64, 0, len(payload.LandingPageProducts))
	seen := make(map[int64]struct{}, len(payload.LandingPageProducts))
	for _, lp := range payload.LandingPageProducts {
		if _, ok := seen[lp.ProductID]; ok {
			continue
		}
		seen[lp.ProductID] = struct{}{}
		ids = append(ids, lp.ProductID)
	}

	found, err := h.products.GetByIDs(c.Request().Context(), ids)
	if err != nil {
		return h.respondError(c, err)
	}
	exists := make(map[int64]struct{}, len(found))
	for _, p := range found {
		exists[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := exists[id]; !ok {
			return h.respondError(c, &order.ProductNotFoundError{ProductID: id})
		}
	}

	page := landing.Page{
		Name: payload.Name,
		Slug: payload.Slug,
	}
	page.Products = make([]landing.PageProduct, len(payload.LandingPageProducts))
	for i, lp := range payload.LandingPageProducts {
		faqs := make([]landing.FAQ, len(lp.FAQs))
		for j, faq := range lp.FAQs {
			faqs[j] = landing.FAQ{Question: faq.Question, Answer: faq.Answer}
		}
		page.Products[i] = landing.PageProduct{
			ProductID:   lp.ProductID,
			Description: lp.Description,
			FAQs:        faqs,
		}
	}

	if err := h.pages.Create(c.Request().Context(), &page); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toLandingPageResponse(page))
}

func (h *Handler) deleteLandingPage(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.pages.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
