package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderItemRepository implements order.ItemRepository using GORM
type GormOrderItemRepository struct {
	db *gorm.DB
}

// NewGormOrderItemRepository creates a new GormOrderItemRepository
func NewGormOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

// FindByID finds an order item by its ID
func (r *GormOrderItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.OrderItem, error) {
	var row models.OrderItemModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindByOrder returns the items of an order ordered by position
func (r *GormOrderItemRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderItem, error) {
	var rows []models.OrderItemModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrderItems(rows), nil
}

// UpdateMatch overwrites the match record with a single UPDATE statement
func (r *GormOrderItemRepository) UpdateMatch(ctx context.Context, id uuid.UUID, update order.MatchUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("id = ?", id).
		Updates(models.MatchColumns(update))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListByStatus returns the most recently updated items in status
func (r *GormOrderItemRepository) ListByStatus(ctx context.Context, status matching.Status, limit int) ([]order.OrderItem, error) {
	var rows []models.OrderItemModel
	query := r.db.WithContext(ctx).
		Where("match_status = ?", status).
		Order("updated_at DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrderItems(rows), nil
}

func toOrderItems(rows []models.OrderItemModel) []order.OrderItem {
	items := make([]order.OrderItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

// Ensure GormOrderItemRepository implements the interface
var _ order.ItemRepository = (*GormOrderItemRepository)(nil)
