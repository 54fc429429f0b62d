package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// CreateWithItems inserts the order and all of its items in one transaction
func (r *GormOrderRepository) CreateWithItems(ctx context.Context, o *order.Order) error {
	orderRow := &models.OrderModel{}
	orderRow.FromDomain(o)

	itemRows := make([]models.OrderItemModel, len(o.Items))
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		itemRows[i] = *models.OrderItemModelFromDomain(&o.Items[i])
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(orderRow).Error; err != nil {
			return err
		}
		if len(itemRows) == 0 {
			return nil
		}
		return tx.Create(&itemRows).Error
	})
}

// FindByID returns the order with items ordered by position
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var row models.OrderModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Ensure GormOrderRepository implements the interface
var _ order.Repository = (*GormOrderRepository)(nil)
