package persistence

import (
	"context"
	"testing"

	"github.com/angofact/backend/internal/domain/inventory"
	"github.com/angofact/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.StockMovementModel{})
	require.NoError(t, err)

	return db
}

func TestGormStockMovementRepository_RecordAndFind(t *testing.T) {
	repo := NewGormStockMovementRepository(setupInventoryTestDB(t))
	ctx := context.Background()
	warehouseID := uuid.New()
	productID := uuid.New()

	exit, err := inventory.NewStockMovement(inventory.MovementKindExit, productID,
		decimal.NewFromInt(2), warehouseID, "FT A 2024/1")
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, exit))

	entry, err := inventory.NewStockMovement(inventory.MovementKindEntry, productID,
		decimal.NewFromInt(2), warehouseID, "NC A 2024/1")
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, entry))

	byDocument, err := repo.FindByDocument(ctx, "FT A 2024/1")
	require.NoError(t, err)
	require.Len(t, byDocument, 1)
	assert.Equal(t, inventory.MovementKindExit, byDocument[0].Kind)
	assert.Equal(t, productID, byDocument[0].ProductID)
	assert.True(t, byDocument[0].Quantity.Equal(decimal.NewFromInt(2)))

	byWarehouse, err := repo.FindByWarehouse(ctx, warehouseID)
	require.NoError(t, err)
	assert.Len(t, byWarehouse, 2)

	other, err := repo.FindByWarehouse(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
