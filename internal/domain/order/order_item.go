package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderItem is one requested line and the match record attached to it
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID
	Position    int
	ItemNumber  string
	Description string
	Quantity    int
	ImageURL    string

	MatchedProductID *uuid.UUID
	MatchConfidence  *int
	MatchStatus      matching.Status
	MatchMethod      matching.Method
	MatchReasoning   string
	FinalPrice       *decimal.Decimal
}

func newOrderItem(orderID uuid.UUID, position int, in matching.Input) *OrderItem {
	return &OrderItem{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		Position:    position,
		ItemNumber:  in.ItemNumber,
		Description: in.Description,
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
		MatchStatus: matching.StatusPending,
	}
}

// Input returns the item's current match input
func (i *OrderItem) Input() matching.Input {
	return matching.NewInput(i.ItemNumber, i.Description, i.Quantity, i.ImageURL)
}

// Outcome is the cascade-produced part of a match record
type Outcome struct {
	Confidence int
	Method     matching.Method
	Reasoning  string
}

// MatchUpdate is written in a single statement so a record is never half replaced.
// Outcome is nil for human actions, which leave confidence, method and
// reasoning as they were.
type MatchUpdate struct {
	ProductID  *uuid.UUID
	FinalPrice *decimal.Decimal
	Status     matching.Status
	Outcome    *Outcome
	UpdatedAt  time.Time
}

// AutomaticUpdate builds the update for a cascade result
func AutomaticUpdate(result matching.Result, status matching.Status, price *decimal.Decimal) MatchUpdate {
	return MatchUpdate{
		ProductID:  result.ProductID,
		FinalPrice: price,
		Status:     status,
		Outcome: &Outcome{
			Confidence: result.Confidence,
			Method:     result.Method,
			Reasoning:  result.Reasoning,
		},
		UpdatedAt: time.Now(),
	}
}

// ConfirmUpdate forces the item to a product chosen by a reviewer
func ConfirmUpdate(productID uuid.UUID, price decimal.Decimal) MatchUpdate {
	return MatchUpdate{
		ProductID:  &productID,
		FinalPrice: &price,
		Status:     matching.StatusConfirmed,
		UpdatedAt:  time.Now(),
	}
}

// RejectUpdate clears the product and price
func RejectUpdate() MatchUpdate {
	return MatchUpdate{
		Status:    matching.StatusRejected,
		UpdatedAt: time.Now(),
	}
}

// Apply mutates the in-memory item the same way the store applies the update
func (i *OrderItem) Apply(u MatchUpdate) {
	i.MatchedProductID = u.ProductID
	i.FinalPrice = u.FinalPrice
	i.MatchStatus = u.Status
	if u.Outcome != nil {
		c := u.Outcome.Confidence
		i.MatchConfidence = &c
		i.MatchMethod = u.Outcome.Method
		i.MatchReasoning = u.Outcome.Reasoning
	}
	i.UpdatedAt = u.UpdatedAt
}
