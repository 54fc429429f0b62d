package dto

import (
	"github.com/google/uuid"
	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/shopspring/decimal"
)

// MatchItemRequest is the item text to resolve for one stored order item
// @Description Item text to match against the catalog
type MatchItemRequest struct {
	ItemNumber  string `json:"item_number" binding:"max=100" example:"VN-001"`
	Description string `json:"description" binding:"max=2000" example:"black leather wallet"`
	Quantity    int    `json:"quantity" binding:"min=0" example:"2"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=2000" example:"https://cdn.example.com/items/vn-001.jpg"`
}

// ToInput converts the request to a matching input
func (r MatchItemRequest) ToInput() matching.Input {
	return matching.NewInput(r.ItemNumber, r.Description, r.Quantity, r.ImageURL)
}

// ConfirmMatchRequest confirms a product for an item. FinalPrice overrides
// the catalog price when present.
// @Description Request body for confirming a match
type ConfirmMatchRequest struct {
	ProductID  string           `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	FinalPrice *decimal.Decimal `json:"final_price" swaggertype:"string" example:"119.50"`
}

// ReviewQuery filters the review queue
type ReviewQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending auto_matched manual_review confirmed rejected"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// BatchLineResponse is one line of a batch match
// @Description Batch match line
type BatchLineResponse struct {
	Position int                    `json:"position"`
	ItemID   *uuid.UUID             `json:"item_id"`
	Match    *appmatching.ItemMatch `json:"match,omitempty"`
	Error    *ErrorInfo             `json:"error,omitempty"`
}

// BatchResponse summarizes a batch match
// @Description Batch match response
type BatchResponse struct {
	OrderID   uuid.UUID           `json:"order_id" example:"550e8400-e29b-41d4-a716-446655440010"`
	Processed int                 `json:"processed" example:"3"`
	Failed    int                 `json:"failed" example:"0"`
	Items     []BatchLineResponse `json:"items"`
}

// ToBatchResponse converts orchestrator batch output. errorInfo maps a
// line error to its wire form.
func ToBatchResponse(orderID uuid.UUID, results []appmatching.BatchItemResult, errorInfo func(error) *ErrorInfo) BatchResponse {
	resp := BatchResponse{
		OrderID: orderID,
		Items:   make([]BatchLineResponse, len(results)),
	}
	for i, r := range results {
		line := BatchLineResponse{Position: r.Position, Match: r.Match}
		if r.ItemID != uuid.Nil {
			id := r.ItemID
			line.ItemID = &id
		}
		if r.Err != nil {
			line.Error = errorInfo(r.Err)
			resp.Failed++
		} else {
			resp.Processed++
		}
		resp.Items[i] = line
	}
	return resp
}
