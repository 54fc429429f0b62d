package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&models.ProductModel{}, &models.OrderModel{}, &models.OrderItemModel{})
	require.NoError(t, err)
	return db
}

func saveProduct(t *testing.T, repo *GormProductRepository, code string, price int64, active bool) *catalog.Product {
	p, err := catalog.NewProduct(code, "desc "+code, decimal.NewFromInt(price))
	require.NoError(t, err)
	if !active {
		p.Deactivate()
	}
	require.NoError(t, repo.Save(context.Background(), p))
	return p
}

func TestGormProductRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	b := saveProduct(t, repo, "VN-002", 45, true)
	a := saveProduct(t, repo, "VN-001", 120, true)
	retired := saveProduct(t, repo, "VN-000", 10, false)

	t.Run("ListActive returns active products ordered by code", func(t *testing.T) {
		products, err := repo.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, a.ID, products[0].ID)
		assert.Equal(t, b.ID, products[1].ID)
		assert.True(t, products[0].Price.Equal(decimal.NewFromInt(120)))
	})

	t.Run("FindByID returns inactive products too", func(t *testing.T) {
		found, err := repo.FindByID(ctx, retired.ID)
		require.NoError(t, err)
		assert.False(t, found.Active)
	})

	t.Run("FindByID reports missing products", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Save updates existing rows", func(t *testing.T) {
		a.Price = decimal.RequireFromString("99.50")
		require.NoError(t, repo.Save(ctx, a))
		found, err := repo.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, found.Price.Equal(decimal.RequireFromString("99.50")))
	})
}

func newTestOrder(t *testing.T, inputs ...matching.Input) *order.Order {
	o, err := order.NewOrder("", "Ana", "ana@example.com", "")
	require.NoError(t, err)
	for _, in := range inputs {
		o.AddItem(in)
	}
	return o
}

func TestGormOrderRepository_CreateWithItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	items := NewGormOrderItemRepository(db)
	ctx := context.Background()

	o := newTestOrder(t,
		matching.NewInput("VN-001", "", 2, ""),
		matching.NewInput("", "black leather belt", 0, "https://img.example.com/belt.jpg"),
	)
	require.NoError(t, repo.CreateWithItems(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, found.OrderNumber)
	require.Len(t, found.Items, 2)
	assert.Equal(t, o.Items[0].ID, found.Items[0].ID)
	assert.Equal(t, 1, found.Items[0].Position)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Equal(t, 2, found.Items[1].Position)
	assert.Equal(t, 1, found.Items[1].Quantity)
	assert.Equal(t, matching.StatusPending, found.Items[1].MatchStatus)

	byOrder, err := items.FindByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ItemIDs(), []uuid.UUID{byOrder[0].ID, byOrder[1].ID})

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_CreateIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, matching.NewInput("A", "", 1, ""), matching.NewInput("B", "", 1, ""))
	o.Items[1].Position = o.Items[0].Position // violates the position index

	require.Error(t, repo.CreateWithItems(ctx, o))

	var count int64
	require.NoError(t, db.Model(&models.OrderModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGormOrderItemRepository_UpdateMatch(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	repo := NewGormOrderItemRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, matching.NewInput("VN-001", "", 1, ""))
	require.NoError(t, orders.CreateWithItems(ctx, o))
	itemID := o.Items[0].ID
	productID := uuid.New()
	price := decimal.NewFromInt(120)

	t.Run("automatic update writes every match column", func(t *testing.T) {
		result := matching.Result{ProductID: &productID, Confidence: 100, Method: matching.MethodExact, Reasoning: "Exact item number match"}
		err := repo.UpdateMatch(ctx, itemID, order.AutomaticUpdate(result, matching.StatusAutoMatched, &price))
		require.NoError(t, err)

		item, err := repo.FindByID(ctx, itemID)
		require.NoError(t, err)
		assert.Equal(t, productID, *item.MatchedProductID)
		assert.Equal(t, 100, *item.MatchConfidence)
		assert.Equal(t, matching.MethodExact, item.MatchMethod)
		assert.Equal(t, "Exact item number match", item.MatchReasoning)
		assert.Equal(t, matching.StatusAutoMatched, item.MatchStatus)
		assert.True(t, item.FinalPrice.Equal(price))
	})

	t.Run("reject clears product and price but keeps the explanation", func(t *testing.T) {
		require.NoError(t, repo.UpdateMatch(ctx, itemID, order.RejectUpdate()))

		item, err := repo.FindByID(ctx, itemID)
		require.NoError(t, err)
		assert.Nil(t, item.MatchedProductID)
		assert.Nil(t, item.FinalPrice)
		assert.Equal(t, matching.StatusRejected, item.MatchStatus)
		assert.Equal(t, 100, *item.MatchConfidence)
		assert.Equal(t, matching.MethodExact, item.MatchMethod)
	})

	t.Run("missing item", func(t *testing.T) {
		err := repo.UpdateMatch(ctx, uuid.New(), order.RejectUpdate())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderItemRepository_ListByStatus(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	repo := NewGormOrderItemRepository(db)
	ctx := context.Background()

	o := newTestOrder(t,
		matching.NewInput("A", "", 1, ""),
		matching.NewInput("B", "", 1, ""),
		matching.NewInput("C", "", 1, ""),
	)
	require.NoError(t, orders.CreateWithItems(ctx, o))

	base := time.Now()
	for i, id := range o.ItemIDs()[:2] {
		u := order.AutomaticUpdate(matching.NoMatch("matching failed"), matching.StatusManualReview, nil)
		u.UpdatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.UpdateMatch(ctx, id, u))
	}

	review, err := repo.ListByStatus(ctx, matching.StatusManualReview, 10)
	require.NoError(t, err)
	require.Len(t, review, 2)
	assert.Equal(t, o.Items[1].ID, review[0].ID, "newest first")

	limited, err := repo.ListByStatus(ctx, matching.StatusManualReview, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	pending, err := repo.ListByStatus(ctx, matching.StatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, o.Items[2].ID, pending[0].ID)
}
