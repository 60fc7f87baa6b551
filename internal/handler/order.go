package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, dto.NewOrderResponse(order))
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	var p dto.Pagination
	if !bindQuery(c, &p) {
		return
	}
	p.Normalize(defaultOrderLimit)
	orders, total, err := h.orderService.ListMyOrders(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, p, len(orders), total, dto.NewOrderList(orders))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, dto.NewOrderResponse(order))
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.CancelOrderRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	order, err := h.orderService.CancelOrder(c.Request.Context(), middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, "Order cancelled successfully", dto.NewOrderResponse(order))
}

// ListOrders is the admin view across all customers.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q dto.ListOrdersQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Normalize(defaultAdminLimit)
	orders, total, err := h.orderService.ListOrders(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, q.Pagination, len(orders), total, dto.NewOrderList(orders))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	message(c, "Order status updated", dto.NewOrderResponse(order))
}
