package matching

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/logger"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LifecycleManager applies reviewer decisions to existing match records
type LifecycleManager struct {
	orchestrator *Orchestrator
	items        order.ItemRepository
	products     catalog.ProductRepository
}

// NewLifecycleManager shares the orchestrator's stores and item guard
func NewLifecycleManager(orchestrator *Orchestrator) *LifecycleManager {
	return &LifecycleManager{
		orchestrator: orchestrator,
		items:        orchestrator.items,
		products:     orchestrator.products,
	}
}

// ConfirmMatch pins the item to productID with status confirmed. finalPrice
// overrides the catalog price when given. An unknown product fails with
// shared.ErrNotFound before anything is written.
func (m *LifecycleManager) ConfirmMatch(ctx context.Context, itemID, productID uuid.UUID, finalPrice *decimal.Decimal) (*order.OrderItem, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "confirm", "item_id", itemID.String())
	defer span.End()

	if finalPrice != nil && finalPrice.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("final price cannot be negative")
	}

	product, err := m.products.FindByID(ctx, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("product not found")
		}
		return nil, persistenceError(err)
	}
	if !product.Active {
		return nil, matching.ErrProductInactive
	}

	price := product.Price
	if finalPrice != nil {
		price = *finalPrice
	}

	item, err := m.mutate(ctx, itemID, order.ConfirmUpdate(product.ID, price))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	logger.FromContext(ctx).Info("match confirmed",
		zap.String("item_id", itemID.String()),
		zap.String("product_id", productID.String()),
		zap.String("final_price", price.String()),
	)
	return item, nil
}

// RejectMatch clears the product and price and marks the item rejected
func (m *LifecycleManager) RejectMatch(ctx context.Context, itemID uuid.UUID) (*order.OrderItem, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "reject", "item_id", itemID.String())
	defer span.End()

	item, err := m.mutate(ctx, itemID, order.RejectUpdate())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	logger.FromContext(ctx).Info("match rejected", zap.String("item_id", itemID.String()))
	return item, nil
}

// ReprocessMatch reloads the item's inputs and runs the full cascade again,
// replacing the previous record in a single write. Calling it repeatedly is
// safe; the outcome only varies with the AI stage.
func (m *LifecycleManager) ReprocessMatch(ctx context.Context, itemID uuid.UUID) (*ItemMatch, error) {
	var match *ItemMatch
	err := m.orchestrator.guard.run(ctx, itemID, func(ctx context.Context) error {
		item, err := m.findItem(ctx, itemID)
		if err != nil {
			return err
		}
		match, err = m.orchestrator.process(ctx, item.ID, item.Input())
		if match != nil {
			match.Position = item.Position
		}
		return err
	})
	return match, err
}

func (m *LifecycleManager) mutate(ctx context.Context, itemID uuid.UUID, update order.MatchUpdate) (*order.OrderItem, error) {
	var item *order.OrderItem
	err := m.orchestrator.guard.run(ctx, itemID, func(ctx context.Context) error {
		var err error
		if item, err = m.findItem(ctx, itemID); err != nil {
			return err
		}
		if err := m.items.UpdateMatch(ctx, itemID, update); err != nil {
			return persistenceError(err)
		}
		item.Apply(update)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (m *LifecycleManager) findItem(ctx context.Context, itemID uuid.UUID) (*order.OrderItem, error) {
	item, err := m.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("order item not found")
		}
		return nil, persistenceError(err)
	}
	return item, nil
}

// ListForReview returns the newest items in status, manual review by default
func (m *LifecycleManager) ListForReview(ctx context.Context, status matching.Status, limit int) ([]order.OrderItem, error) {
	if status == "" {
		status = matching.StatusManualReview
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := m.items.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, persistenceError(err)
	}
	return items, nil
}
