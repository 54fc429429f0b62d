package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	apporder "github.com/josa-ai/verve-noir-app/internal/application/order"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/dto"
)

// OrderService is the order intake use case
type OrderService interface {
	CreateOrder(ctx context.Context, req apporder.CreateOrderRequest) (*apporder.OrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*apporder.OrderResponse, error)
}

// OrderMatcher re-runs matching for every item of a stored order
type OrderMatcher interface {
	BatchProcessOrder(ctx context.Context, orderID uuid.UUID) ([]appmatching.BatchItemResult, error)
}

// OrderHandler handles order intake endpoints
type OrderHandler struct {
	BaseHandler
	orders  OrderService
	matcher OrderMatcher
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService, matcher OrderMatcher) *OrderHandler {
	return &OrderHandler{orders: orders, matcher: matcher}
}

// Create godoc
// @Summary      Create an order and match its items
// @Description  Store an order with its line items in one transaction, then run matching over every item. When matching fails part way the stored order is returned in data next to the error.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body apporder.CreateOrderRequest true "Order creation request"
// @Success      201 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{data=apporder.OrderResponse,error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{data=apporder.OrderResponse,error=dto.ErrorInfo}
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req apporder.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		// the order exists once resp is set; matching errors ride along
		h.HandleErrorWithData(c, err, orNil(resp))
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary      Get an order
// @Description  Get an order with its items and their match records
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=apporder.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	resp, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Match godoc
// @Summary      Match every item of an order
// @Description  Re-run matching for every stored item of the order in position order. Per-line failures are reported in the batch body.
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=dto.BatchResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{data=dto.BatchResponse,error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{data=dto.BatchResponse,error=dto.ErrorInfo}
// @Router       /orders/{id}/match [post]
func (h *OrderHandler) Match(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	results, err := h.matcher.BatchProcessOrder(c.Request.Context(), id)
	if err != nil {
		var data any
		if len(results) > 0 {
			data = dto.ToBatchResponse(id, results, ErrorInfo)
		}
		h.HandleErrorWithData(c, err, data)
		return
	}
	h.Success(c, dto.ToBatchResponse(id, results, ErrorInfo))
}

// orNil keeps a typed nil pointer out of the response's any field
func orNil(resp *apporder.OrderResponse) any {
	if resp == nil {
		return nil
	}
	return resp
}
