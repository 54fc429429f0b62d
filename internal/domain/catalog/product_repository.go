package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the catalog store consumed by the matching engine
type ProductRepository interface {
	// ListActive returns every active product ordered by code
	ListActive(ctx context.Context) ([]Product, error)

	// FindByID returns shared.ErrNotFound when the product does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
}
