package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to create an order and match its items
type CreateOrderRequest struct {
	OrderNumber   string             `json:"order_number" binding:"max=50"`
	CustomerName  string             `json:"customer_name" binding:"required,min=1,max=200"`
	CustomerEmail string             `json:"customer_email" binding:"omitempty,email,max=200"`
	CustomerPhone string             `json:"customer_phone" binding:"max=50"`
	Items         []OrderItemRequest `json:"items" binding:"max=50,dive"`
}

// OrderItemRequest is one requested line. Lines without item number and
// description are dropped.
type OrderItemRequest struct {
	ItemNumber  string `json:"item_number" binding:"max=100"`
	Description string `json:"description" binding:"max=2000"`
	Quantity    int    `json:"quantity" binding:"min=0"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=2000"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	Status        string              `json:"status"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderItemResponse represents an order item and its match record
type OrderItemResponse struct {
	ID               uuid.UUID        `json:"id"`
	OrderID          uuid.UUID        `json:"order_id"`
	Position         int              `json:"position"`
	ItemNumber       string           `json:"item_number"`
	Description      string           `json:"description"`
	Quantity         int              `json:"quantity"`
	ImageURL         string           `json:"image_url,omitempty"`
	MatchedProductID *uuid.UUID       `json:"matched_product_id"`
	MatchConfidence  *int             `json:"match_confidence"`
	MatchStatus      string           `json:"match_status"`
	MatchMethod      string           `json:"match_method,omitempty"`
	MatchReasoning   string           `json:"match_reasoning,omitempty"`
	FinalPrice       *decimal.Decimal `json:"final_price"`
	MatchError       string           `json:"match_error,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ToOrderItemResponse converts a domain OrderItem to OrderItemResponse
func ToOrderItemResponse(item *order.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:               item.ID,
		OrderID:          item.OrderID,
		Position:         item.Position,
		ItemNumber:       item.ItemNumber,
		Description:      item.Description,
		Quantity:         item.Quantity,
		ImageURL:         item.ImageURL,
		MatchedProductID: item.MatchedProductID,
		MatchConfidence:  item.MatchConfidence,
		MatchStatus:      string(item.MatchStatus),
		MatchMethod:      string(item.MatchMethod),
		MatchReasoning:   item.MatchReasoning,
		FinalPrice:       item.FinalPrice,
		UpdatedAt:        item.UpdatedAt,
	}
}

// ToOrderItemResponses converts a slice of items
func ToOrderItemResponses(items []order.OrderItem) []OrderItemResponse {
	responses := make([]OrderItemResponse, len(items))
	for i := range items {
		responses[i] = ToOrderItemResponse(&items[i])
	}
	return responses
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		CustomerPhone: o.CustomerPhone,
		Status:        string(o.Status),
		Items:         ToOrderItemResponses(o.Items),
		CreatedAt:     o.CreatedAt,
	}
}
