package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ScheduleSaveAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Snapshot{})

	id, err := s.SaveSchedule(ctx, domain.SavedSchedule{StartDate: "2024-03-04", Data: map[string][]int{"FG001": {1}}, TotalBatches: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	err = s.UpdateSchedule(ctx, domain.SavedSchedule{ID: id, StartDate: "2024-03-04", TotalBatches: 5})
	require.NoError(t, err)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.ProductionHistory, 1)
	assert.Equal(t, 5, snap.ProductionHistory[0].TotalBatches)

	err = s.UpdateSchedule(ctx, domain.SavedSchedule{ID: "missing"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Snapshot{ProductionHistory: []domain.SavedSchedule{{ID: "S1", Data: map[string][]int{"FG001": {1}}}}})

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap.ProductionHistory[0].Data["FG001"][0] = 99

	again, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.ProductionHistory[0].Data["FG001"][0])
}

func TestStore_RequestOrderUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Snapshot{})

	require.NoError(t, s.CreateRequestOrder(ctx, domain.RequestOrder{ID: "RO-1", Date: "2024-03-04", Status: domain.OrderDraft}))
	require.NoError(t, s.UpdateRequestOrder(ctx, domain.RequestOrder{ID: "RO-1", Date: "ignored", Status: domain.OrderSent, Deadline: "2024-03-09"}))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.RequestOrders, 1)
	assert.Equal(t, "2024-03-04", snap.RequestOrders[0].Date)
	assert.Equal(t, domain.OrderSent, snap.RequestOrders[0].Status)
	assert.Equal(t, "2024-03-09", snap.RequestOrders[0].Deadline)

	assert.ErrorIs(t, s.UpdateRequestOrder(ctx, domain.RequestOrder{ID: "RO-2"}), repository.ErrNotFound)
}

func TestStore_SyncReplacesCollections(t *testing.T) {
	ctx := context.Background()
	s := New(domain.Snapshot{RawMaterials: []domain.RawMaterial{{ID: "RM001"}, {ID: "RM002"}}})

	require.NoError(t, s.SyncRawMaterials(ctx, []domain.RawMaterial{{ID: "RM009"}}))
	require.NoError(t, s.SyncSales(ctx, nil))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.RawMaterials, 1)
	assert.Equal(t, "RM009", snap.RawMaterials[0].ID)
	assert.Empty(t, snap.Sales)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	payload := `{
		"finishGoods": [{"id": "FG001", "qtyPerBatch": "40", "ingredients": "[{\"materialId\":\"RM001\",\"quantity\":2}]"}],
		"salesData": [{"id": "1", "skuId": "FG001", "date": "2024-03-04", "quantitySold": "12"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	s, err := LoadFile(path, time.UTC)
	require.NoError(t, err)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.FinishGoods, 1)
	assert.Equal(t, 40.0, snap.FinishGoods[0].QtyPerBatch)
	require.Len(t, snap.FinishGoods[0].Ingredients, 1)
	assert.Equal(t, 12.0, snap.Sales[0].QuantitySold)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"), time.UTC)
	assert.Error(t, err)
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	limit := 4
	s := New(domain.Snapshot{
		FinishGoods: []domain.FinishGood{{ID: "FG001", QtyPerBatch: 40, IsProductionReady: true, MaxCapacity: &limit,
			Ingredients: []domain.Ingredient{{MaterialID: "RM001", Quantity: 2}}}},
		ProductionHistory: []domain.SavedSchedule{{ID: "SCH1", StartDate: "2024-03-04",
			Data: map[string][]int{"FG001": {1, 0, 0, 0, 0, 0, 2}}, TotalBatches: 3}},
	})
	require.NoError(t, s.SaveFile(path))

	loaded, err := LoadFile(path, time.UTC)
	require.NoError(t, err)
	snap, err := loaded.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.FinishGoods, 1)
	assert.Equal(t, []domain.Ingredient{{MaterialID: "RM001", Quantity: 2}}, snap.FinishGoods[0].Ingredients)
	require.Len(t, snap.ProductionHistory, 1)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 2}, snap.ProductionHistory[0].Data["FG001"])
	assert.Equal(t, 3, snap.ProductionHistory[0].TotalBatches)
}
