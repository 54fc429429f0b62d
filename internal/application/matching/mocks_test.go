package matching

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of order.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.OrderItem), args.Error(1)
}

func (m *MockItemRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.OrderItem), args.Error(1)
}

func (m *MockItemRepository) UpdateMatch(ctx context.Context, id uuid.UUID, update order.MatchUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockItemRepository) ListByStatus(ctx context.Context, status matching.Status, limit int) ([]order.OrderItem, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.OrderItem), args.Error(1)
}

// stubClient returns canned completions and records the last request
type stubClient struct {
	mu       sync.Mutex
	content  string
	err      error
	calls    int
	last     CompletionRequest
	complete func(ctx context.Context) (string, error)
}

func (c *stubClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	c.mu.Lock()
	c.calls++
	c.last = req
	c.mu.Unlock()
	if c.complete != nil {
		return c.complete(ctx)
	}
	return c.content, c.err
}

// stubRanker records the candidates handed to the AI stage
type stubRanker struct {
	result     matching.Result
	err        error
	candidates []matching.Candidate
}

func (r *stubRanker) Rank(ctx context.Context, in matching.Input, candidates []matching.Candidate) (matching.Result, error) {
	r.candidates = candidates
	return r.result, r.err
}

func newProduct(code, description string, price int64) catalog.Product {
	p, err := catalog.NewProduct(code, description, decimal.NewFromInt(price))
	if err != nil {
		panic(err)
	}
	return *p
}

func loadedIndex(products ...catalog.Product) *CatalogIndex {
	idx := NewCatalogIndex(nil, DefaultIndexConfig(), nil)
	idx.LoadProducts(products)
	return idx
}
