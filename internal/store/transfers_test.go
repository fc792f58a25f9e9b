package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/barstock/internal/db"
	"github.com/erazemk/barstock/internal/model"
)

func TestTransferStockConservesTotal(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem("Cola", model.CategoryConcessions)
	item.BarQty = 2
	item.StorageQty = 10
	require.NoError(t, CreateItem(ctx, database, item))

	got, err := TransferStock(ctx, database, item.ID, model.LocationStorage, 4, testNow)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 6, got.BarQty)
	assert.Equal(t, 6, got.StorageQty)
	assert.Equal(t, item.Total(), got.Total())

	got, err = TransferStock(ctx, database, item.ID, model.LocationBar, 1, testNow)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.BarQty)
	assert.Equal(t, 7, got.StorageQty)
}

func TestTransferStockInsufficient(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem("Cola", model.CategoryConcessions)
	item.StorageQty = 3
	require.NoError(t, CreateItem(ctx, database, item))

	tests := []struct {
		name     string
		from     model.Location
		quantity int
	}{
		{"more than storage holds", model.LocationStorage, 4},
		{"empty bar", model.LocationBar, 1},
		{"zero", model.LocationStorage, 0},
		{"negative", model.LocationStorage, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TransferStock(ctx, database, item.ID, tt.from, tt.quantity, testNow)
			require.NoError(t, err)
			assert.Nil(t, got)

			stored, _ := GetItem(ctx, database, item.ID)
			assert.Equal(t, 0, stored.BarQty)
			assert.Equal(t, 3, stored.StorageQty)
			assert.True(t, stored.UpdatedAt.Equal(testNow), "a refused transfer must not touch UpdatedAt")
		})
	}
}

func TestTransferStockUnknownLocation(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := TransferStock(context.Background(), database, "x", model.Location("cellar"), 1, testNow)
	require.Error(t, err)
}

func TestAdjustStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem("Mop", model.CategoryCleaning)
	item.StorageQty = 2
	require.NoError(t, CreateItem(ctx, database, item))

	got, err := AdjustStock(ctx, database, item.ID, model.LocationStorage, 5, testNow)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.StorageQty)

	got, err = AdjustStock(ctx, database, item.ID, model.LocationStorage, -8, testNow)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = AdjustStock(ctx, database, item.ID, model.LocationBar, 1, testNow)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.BarQty)
	assert.Equal(t, 7, got.StorageQty)
}
