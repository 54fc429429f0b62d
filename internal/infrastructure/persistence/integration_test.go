//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("verve_noir_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrationsPath, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestPostgres_MatchRecordRoundTrip(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	products := NewGormProductRepository(db)
	orders := NewGormOrderRepository(db)
	items := NewGormOrderItemRepository(db)

	p, err := catalog.NewProduct("VN-001", "black leather wallet", decimal.RequireFromString("120.00"))
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, p))

	o, err := order.NewOrder("", "Ana", "", "")
	require.NoError(t, err)
	o.AddItem(matching.NewInput("vn-001", "", 2, ""))
	o.AddItem(matching.NewInput("", "belt", 1, ""))
	require.NoError(t, orders.CreateWithItems(ctx, o))

	result := matching.Result{ProductID: &p.ID, Confidence: 100, Method: matching.MethodExact, Reasoning: "Exact item number match"}
	require.NoError(t, items.UpdateMatch(ctx, o.Items[0].ID, order.AutomaticUpdate(result, matching.StatusAutoMatched, &p.Price)))

	stored, err := items.FindByID(ctx, o.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, *stored.MatchedProductID)
	assert.Equal(t, matching.MethodExact, stored.MatchMethod)
	assert.True(t, stored.FinalPrice.Equal(decimal.NewFromInt(120)))

	active, err := products.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	err = items.UpdateMatch(ctx, uuid.New(), order.RejectUpdate())
	assert.Error(t, err)
}
