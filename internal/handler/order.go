package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/shopfront/shopfront/internal/domain/order"
)

type customerPayload struct {
	Name         string `json:"name" validate:"required,min=1"`
	MobileNumber string `json:"mobileNumber" validate:"required,min=11"`
	Address      string `json:"address" validate:"required,min=1"`
}

type orderLinePayload struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// orderPayload is the admin create/edit input. Note the absence of any total
// field: totals are always recomputed from catalog prices.
type orderPayload struct {
	Customer       customerPayload    `json:"customer"`
	OrderItems     []orderLinePayload `json:"orderItems" validate:"required,min=1,dive"`
	ShippingCharge decimal.Decimal    `json:"shippingCharge"`
	OrderStatus    string             `json:"orderStatus" validate:"omitempty,oneof=pending delivered cancelled"`
	LandingPageID  *int64             `json:"landingPageId"`
}

func (p *orderPayload) toPlaceRequest() order.PlaceOrderRequest {
	lines := make([]order.LineRequest, len(p.OrderItems))
	for i, it := range p.OrderItems {
		lines[i] = order.LineRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return order.PlaceOrderRequest{
		Customer: order.Customer{
			Name:         p.Customer.Name,
			MobileNumber: p.Customer.MobileNumber,
			Address:      p.Customer.Address,
		},
		Lines:          lines,
		ShippingCharge: p.ShippingCharge,
		Status:         order.Status(p.OrderStatus),
		LandingPageID:  p.LandingPageID,
	}
}

type customerResponse struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	Address      string `json:"address"`
}

type orderItemResponse struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type orderResponse struct {
	ID             int64               `json:"id"`
	Customer       customerResponse    `json:"customer"`
	OrderItems     []orderItemResponse `json:"orderItems"`
	TotalPrice     float64             `json:"totalPrice"`
	ShippingCharge float64             `json:"shippingCharge"`
	OrderStatus    string              `json:"orderStatus"`
	LandingPageID  *int64              `json:"landingPageId,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
		}
	}
	return orderResponse{
		ID: o.ID,
		Customer: customerResponse{
			Name:         o.Customer.Name,
			MobileNumber: o.Customer.MobileNumber,
			Address:      o.Customer.Address,
		},
		OrderItems:     items,
		TotalPrice:     o.TotalPrice.InexactFloat64(),
		ShippingCharge: o.ShippingCharge.InexactFloat64(),
		OrderStatus:    string(o.Status),
		LandingPageID:  o.LandingPageID,
		CreatedAt:      o.CreatedAt,
	}
}

// checkout is the public storefront submission: customer details plus the
// cart's line requests. Orders always start as pending; any status a client
// sends is ignored.
func (h *Handler) checkout(c echo.Context) error {
	var payload orderPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}
	payload.OrderStatus = ""

	o, err := h.orders.Place(c.Request().Context(), payload.toPlaceRequest())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(*o))
}

func (h *Handler) listOrders(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) getOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	o, err := h.orders.Get(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) createOrder(c echo.Context) error {
	var payload orderPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}

	o, err := h.orders.Place(c.Request().Context(), payload.toPlaceRequest())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(*o))
}

func (h *Handler) updateOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	var payload orderPayload
	if err := h.bindAndValidate(c, &payload); err != nil {
		return h.respondError(c, err)
	}

	o, err := h.orders.Update(c.Request().Context(), id, payload.toPlaceRequest())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *Handler) deleteOrder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return h.respondError(c, err)
	}

	if err := h.orders.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
