package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boulevard/bicycles/internal/service"
	"github.com/boulevard/bicycles/internal/validation"
)

type orderLineRequest struct {
	Product  string `json:"product" validate:"required,mongodb"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	Products []orderLineRequest `json:"products" validate:"required,min=1,dive"`
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orders    *service.OrderService
	validator *validation.Validator
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService, v *validation.Validator) *OrderHandler {
	return &OrderHandler{orders: orders, validator: v}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	lines := make([]service.OrderLine, len(req.Products))
	for i, l := range req.Products {
		lines[i] = service.OrderLine{Product: l.Product, Quantity: l.Quantity}
	}

	principal, _ := GetPrincipal(c)
	order, err := h.orders.Create(c.Request().Context(), principal, lines)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, "Order created successfully!", order)
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c echo.Context) error {
	principal, _ := GetPrincipal(c)
	orders, err := h.orders.List(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Orders retrieved successfully!", orders)
}

// Revenue handles GET /api/orders/revenue.
func (h *OrderHandler) Revenue(c echo.Context) error {
	total, err := h.orders.Revenue(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Revenue calculated successfully!", map[string]float64{"totalRevenue": total})
}
