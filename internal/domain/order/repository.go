package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
)

// Repository persists orders together with their items
type Repository interface {
	// CreateWithItems inserts the order and every item in one transaction.
	// Item identifiers are assigned before the call and are valid once it returns.
	CreateWithItems(ctx context.Context, order *Order) error

	// FindByID returns the order with items ordered by position
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}

// ItemRepository reads and writes match records on order items
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderItem, error)

	// FindByOrder returns items ordered by position
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)

	// UpdateMatch overwrites the match record; shared.ErrNotFound when the item is gone
	UpdateMatch(ctx context.Context, id uuid.UUID, update MatchUpdate) error

	// ListByStatus returns the newest items in the given status
	ListByStatus(ctx context.Context, status matching.Status, limit int) ([]OrderItem, error)
}
