package catalog

import (
	"strings"
	"time"

	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Only active products are eligible
// as match targets.
type Product struct {
	shared.BaseEntity
	Code           string
	Description    string
	Price          decimal.Decimal
	QuantityOnHand int
	ImageURL       string
	Active         bool
}

// NewProduct creates an active product
func NewProduct(code, description string, price decimal.Decimal) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.ErrInvalidInput.WithMessage("product code cannot be empty")
	}
	if len(code) > 100 {
		return nil, shared.ErrInvalidInput.WithMessage("product code cannot exceed 100 characters")
	}
	if price.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("product price cannot be negative")
	}

	return &Product{
		BaseEntity:  shared.NewBaseEntity(),
		Code:        code,
		Description: strings.TrimSpace(description),
		Price:       price,
		Active:      true,
	}, nil
}

// Deactivate removes the product from matching
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Activate makes the product eligible for matching again
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}
