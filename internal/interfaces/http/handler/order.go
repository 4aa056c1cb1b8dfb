package handler

import (
	"github.com/gin-gonic/gin"

	orderapp "github.com/openshop/backend/internal/application/order"
)

// OrderHandler handles order checkout and lifecycle requests
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Checkout handles POST /orders
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req orderapp.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.CreateFromCart(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Transition handles POST /orders/:number/transitions
func (h *OrderHandler) Transition(c *gin.Context) {
	orderNumber := c.Param("number")

	var req orderapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orderService.Transition(c.Request.Context(), orderNumber, req.Event, req.Params)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Get handles GET /orders/:number
func (h *OrderHandler) Get(c *gin.Context) {
	orderNumber := c.Param("number")

	resp, err := h.orderService.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List handles GET /orders?customer_email=
func (h *OrderHandler) List(c *gin.Context) {
	email := c.Query("customer_email")
	if email == "" {
		h.BadRequest(c, "customer_email query parameter is required")
		return
	}

	resp, err := h.orderService.ListByCustomer(c.Request.Context(), email)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Checkout)
		orders.GET("", h.List)
		orders.GET("/:number", h.Get)
		orders.POST("/:number/transitions", h.Transition)
	}
}
