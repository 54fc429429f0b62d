package matching

import (
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
)

// ExactResolver looks an item code up in the catalog snapshot
type ExactResolver struct {
	index *CatalogIndex
}

// NewExactResolver creates an ExactResolver over index
func NewExactResolver(index *CatalogIndex) *ExactResolver {
	return &ExactResolver{index: index}
}

// Resolve returns the product with the same normalized code, or nil when code
// is blank or unknown. It fails only when the catalog is unavailable.
func (r *ExactResolver) Resolve(code string) (*catalog.Product, error) {
	if normalizeCode(code) == "" {
		return nil, nil
	}
	return r.index.FindByCode(code)
}
