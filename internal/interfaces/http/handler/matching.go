package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	apporder "github.com/josa-ai/verve-noir-app/internal/application/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ItemProcessor runs the cascade for one stored item
type ItemProcessor interface {
	ProcessItem(ctx context.Context, itemID uuid.UUID, in matching.Input) (*appmatching.ItemMatch, error)
}

// MatchLifecycle is the reviewer side of a match record
type MatchLifecycle interface {
	ConfirmMatch(ctx context.Context, itemID, productID uuid.UUID, finalPrice *decimal.Decimal) (*order.OrderItem, error)
	RejectMatch(ctx context.Context, itemID uuid.UUID) (*order.OrderItem, error)
	ReprocessMatch(ctx context.Context, itemID uuid.UUID) (*appmatching.ItemMatch, error)
	ListForReview(ctx context.Context, status matching.Status, limit int) ([]order.OrderItem, error)
}

// MatchingHandler handles per-item match endpoints
type MatchingHandler struct {
	BaseHandler
	processor ItemProcessor
	lifecycle MatchLifecycle
}

// NewMatchingHandler creates a new MatchingHandler
func NewMatchingHandler(processor ItemProcessor, lifecycle MatchLifecycle) *MatchingHandler {
	return &MatchingHandler{processor: processor, lifecycle: lifecycle}
}

// Process godoc
// @Summary      Match one order item
// @Description  Resolve the posted item number and description against the catalog and store the result as the item's match. A failed write still returns the computed match in data.
// @Tags         order-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Order item ID" format(uuid)
// @Param        request body dto.MatchItemRequest true "Item text to match"
// @Success      200 {object} dto.Response{data=appmatching.ItemMatch}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{data=appmatching.ItemMatch,error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /order-items/{id}/match [post]
func (h *MatchingHandler) Process(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.MatchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	match, err := h.processor.ProcessItem(c.Request.Context(), id, req.ToInput())
	h.respondMatch(c, match, err)
}

// Confirm godoc
// @Summary      Confirm a match
// @Description  Set the reviewer's product on the item. The final price defaults to the catalog price.
// @Tags         order-items
// @Accept       json
// @Produce      json
// @Param        id path string true "Order item ID" format(uuid)
// @Param        request body dto.ConfirmMatchRequest true "Confirmed product"
// @Success      200 {object} dto.Response{data=apporder.OrderItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /order-items/{id}/confirm [post]
func (h *MatchingHandler) Confirm(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product_id format")
		return
	}

	item, err := h.lifecycle.ConfirmMatch(c.Request.Context(), id, productID, req.FinalPrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apporder.ToOrderItemResponse(item))
}

// Reject godoc
// @Summary      Reject a match
// @Description  Clear the item's product and send it back to manual review
// @Tags         order-items
// @Produce      json
// @Param        id path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=apporder.OrderItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /order-items/{id}/reject [post]
func (h *MatchingHandler) Reject(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	item, err := h.lifecycle.RejectMatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apporder.ToOrderItemResponse(item))
}

// Reprocess godoc
// @Summary      Reprocess a match
// @Description  Run matching again on the item's stored item number and description
// @Tags         order-items
// @Produce      json
// @Param        id path string true "Order item ID" format(uuid)
// @Success      200 {object} dto.Response{data=appmatching.ItemMatch}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{data=appmatching.ItemMatch,error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /order-items/{id}/reprocess [post]
func (h *MatchingHandler) Reprocess(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	match, err := h.lifecycle.ReprocessMatch(c.Request.Context(), id)
	h.respondMatch(c, match, err)
}

// Review godoc
// @Summary      List the review queue
// @Description  List items in a match status, newest first. Status defaults to manual_review.
// @Tags         order-items
// @Produce      json
// @Param        status query string false "Match status" Enums(pending, auto_matched, manual_review, confirmed, rejected)
// @Param        limit query int false "Maximum items" minimum(1) maximum(200) default(50)
// @Success      200 {object} dto.Response{data=[]apporder.OrderItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /order-items/review [get]
func (h *MatchingHandler) Review(c *gin.Context) {
	var q dto.ReviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	items, err := h.lifecycle.ListForReview(c.Request.Context(), matching.Status(q.Status), q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, apporder.ToOrderItemResponses(items), len(items), q.Limit)
}

// respondMatch writes a match. A write failure still returns the computed
// match in data next to the error.
func (h *MatchingHandler) respondMatch(c *gin.Context, match *appmatching.ItemMatch, err error) {
	if err != nil {
		var data any
		if match != nil {
			data = match
		}
		h.HandleErrorWithData(c, err, data)
		return
	}
	h.Success(c, match)
}
