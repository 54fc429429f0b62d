package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// ListActive returns every active product ordered by code, then id
func (r *GormProductRepository) ListActive(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("code ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// FindByID finds a product by its ID, active or not
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var row models.ProductModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// Ensure GormProductRepository implements the interface
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
