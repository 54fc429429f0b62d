package handler

import (
	"context"

	"github.com/google/uuid"
	appmatching "github.com/josa-ai/verve-noir-app/internal/application/matching"
	apporder "github.com/josa-ai/verve-noir-app/internal/application/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req apporder.CreateOrderRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*apporder.OrderResponse)
	return resp, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*apporder.OrderResponse)
	return resp, args.Error(1)
}

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) BatchProcessOrder(ctx context.Context, orderID uuid.UUID) ([]appmatching.BatchItemResult, error) {
	args := m.Called(ctx, orderID)
	results, _ := args.Get(0).([]appmatching.BatchItemResult)
	return results, args.Error(1)
}

func (m *MockMatcher) ProcessItem(ctx context.Context, itemID uuid.UUID, in matching.Input) (*appmatching.ItemMatch, error) {
	args := m.Called(ctx, itemID, in)
	match, _ := args.Get(0).(*appmatching.ItemMatch)
	return match, args.Error(1)
}

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) ConfirmMatch(ctx context.Context, itemID, productID uuid.UUID, finalPrice *decimal.Decimal) (*order.OrderItem, error) {
	args := m.Called(ctx, itemID, productID, finalPrice)
	item, _ := args.Get(0).(*order.OrderItem)
	return item, args.Error(1)
}

func (m *MockLifecycle) RejectMatch(ctx context.Context, itemID uuid.UUID) (*order.OrderItem, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*order.OrderItem)
	return item, args.Error(1)
}

func (m *MockLifecycle) ReprocessMatch(ctx context.Context, itemID uuid.UUID) (*appmatching.ItemMatch, error) {
	args := m.Called(ctx, itemID)
	match, _ := args.Get(0).(*appmatching.ItemMatch)
	return match, args.Error(1)
}

func (m *MockLifecycle) ListForReview(ctx context.Context, status matching.Status, limit int) ([]order.OrderItem, error) {
	args := m.Called(ctx, status, limit)
	items, _ := args.Get(0).([]order.OrderItem)
	return items, args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCatalog) Stats() appmatching.IndexStats {
	return m.Called().Get(0).(appmatching.IndexStats)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
