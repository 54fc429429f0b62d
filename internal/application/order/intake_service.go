package order

import (
	"context"

	"github.com/google/uuid"
	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/logger"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ItemMatcher matches stored order items in position order
type ItemMatcher interface {
	ProcessItems(ctx context.Context, orderID uuid.UUID, items []order.OrderItem) ([]appmatching.BatchItemResult, error)
}

// IntakeService creates orders and runs the first match pass over their items
type IntakeService struct {
	orders  order.Repository
	matcher ItemMatcher
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(orders order.Repository, matcher ItemMatcher) *IntakeService {
	return &IntakeService{
		orders:  orders,
		matcher: matcher,
	}
}

// CreateOrder stores the order with its items in one call, then matches
// every item. A failed match pass does not undo the order: the response
// carries whatever was matched and the error is returned alongside it.
func (s *IntakeService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create", "items", len(req.Items))
	defer span.End()

	o, err := order.NewOrder(req.OrderNumber, req.CustomerName, req.CustomerEmail, req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Items {
		o.AddItem(matching.NewInput(line.ItemNumber, line.Description, line.Quantity, line.ImageURL))
	}

	if err := s.orders.CreateWithItems(ctx, o); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Int("items", len(o.Items)),
	)

	resp := ToOrderResponse(o)
	if len(o.Items) == 0 {
		return &resp, nil
	}

	results, matchErr := s.matcher.ProcessItems(ctx, o.ID, o.Items)
	for _, r := range results {
		applyResult(&resp, r)
	}
	if matchErr != nil {
		telemetry.RecordError(span, matchErr)
		log.Warn("order created but matching did not finish",
			zap.String("order_id", o.ID.String()),
			zap.Int("matched", len(results)),
			zap.Error(matchErr),
		)
		return &resp, matchErr
	}
	return &resp, nil
}

// applyResult copies one batch line's outcome onto the response item
func applyResult(resp *OrderResponse, r appmatching.BatchItemResult) {
	for i := range resp.Items {
		item := &resp.Items[i]
		if item.ID != r.ItemID {
			continue
		}
		if r.Match != nil {
			confidence := r.Match.Result.Confidence
			item.MatchedProductID = r.Match.Result.ProductID
			item.MatchConfidence = &confidence
			item.MatchStatus = string(r.Match.Status)
			item.MatchMethod = string(r.Match.Result.Method)
			item.MatchReasoning = r.Match.Result.Reasoning
			item.FinalPrice = r.Match.FinalPrice
		}
		if r.Err != nil {
			item.MatchError = r.Err.Error()
		}
		return
	}
}

// GetOrder returns an order with its items
func (s *IntakeService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}
