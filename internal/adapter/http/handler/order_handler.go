package handler

import (
	"starmf-gateway/internal/adapter/http/dto"
	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports"
	"starmf-gateway/pkg/apperror"
	"starmf-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orderSvc ports.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// PlaceOrder handles POST /api/v1/orders (lumpsum purchase or redemption).
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	order, err := h.orderSvc.PlaceOrder(c.Request.Context(), req.ToOrderRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromOrder(order))
}

// PlaceSIPOrder handles POST /api/v1/orders/sip.
func (h *OrderHandler) PlaceSIPOrder(c *gin.Context) {
	var req dto.SIPOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	order, err := h.orderSvc.PlaceOrder(c.Request.Context(), req.ToOrderRequest())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromOrder(order))
}

// CancelOrder handles POST /api/v1/orders/:ref_no/cancel.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	refNo := c.Param("ref_no")

	order, err := h.orderSvc.CancelOrder(c.Request.Context(), refNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromOrder(order))
}

// GetOrder handles GET /api/v1/orders/:ref_no.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	refNo := c.Param("ref_no")

	order, err := h.orderSvc.GetOrder(c.Request.Context(), refNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromOrder(order))
}

// ListOrders handles GET /api/v1/orders.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var query struct {
		ClientCode string `form:"client_code"`
		Status     string `form:"status" binding:"omitempty,oneof=PENDING ACCEPTED REJECTED CANCELLED"`
		Page       int    `form:"page,default=1"`
		PageSize   int    `form:"page_size,default=20"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	params := ports.OrderListParams{
		ClientCode: query.ClientCode,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.Status != "" {
		status := domain.OrderStatus(query.Status)
		params.Status = &status
	}

	orders, total, err := h.orderSvc.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, dto.FromOrder(&orders[i]))
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	response.OK(c, dto.OrderListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}
