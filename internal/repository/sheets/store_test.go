package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheets serves the subset of the Sheets values API the store uses.
type fakeSheets struct {
	mu     sync.Mutex
	tables map[string][][]any
	writes []string
	bodies []map[string]any
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, rng, _ := strings.Cut(r.URL.Path, "/values/")
	sheet, _, _ := strings.Cut(rng, "!")
	sheet = strings.TrimSuffix(strings.TrimSuffix(sheet, ":append"), ":clear")

	if r.Method != http.MethodGet {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.writes = append(f.writes, r.Method+" "+rng)
		f.bodies = append(f.bodies, body)
		_ = json.NewEncoder(w).Encode(map[string]any{})
		return
	}

	values, ok := f.tables[sheet]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": "Unable to parse range"}})
		return
	}
	if strings.HasSuffix(rng, "!A:A") {
		ids := make([][]any, 0, len(values))
		for _, row := range values {
			ids = append(ids, row[:1])
		}
		values = ids
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
}

func newFakeStore(t *testing.T, f *fakeSheets) *Store {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	s, err := NewStoreWithClient(context.Background(), srv.Client(), "sheet-123", 2, time.UTC, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return s
}

func TestStore_Snapshot(t *testing.T) {
	f := &fakeSheets{tables: map[string][][]any{
		repository.SheetFinishGoods: {
			{"id", "name", "qtyPerBatch", "stock", "isProductionReady", "ingredients", ""},
			{"FG001", "Bakso Halus", 40, 120, true, `[{"materialId":"RM001","quantity":15}]`, "note"},
		},
		repository.SheetSales: {
			{"id", "skuId", "date", "quantitySold"},
			{1, "FG001", "2024-03-04", "12"},
			{2, "FG001", 45356, 3},
		},
		repository.SheetProductionHistory: {
			{"id", "data", "startDate", "createdAt", "totalBatches", "targets"},
			{"S1", `{"FG001":[1,0,0,0,0,0,2]}`, "2024-03-04", "2024-03-03T10:00:00Z", 3, ""},
		},
	}}
	s := newFakeStore(t, f)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.FinishGoods, 1)
	assert.Equal(t, 40.0, snap.FinishGoods[0].QtyPerBatch)
	assert.Equal(t, []domain.Ingredient{{MaterialID: "RM001", Quantity: 15}}, snap.FinishGoods[0].Ingredients)

	require.Len(t, snap.Sales, 2)
	assert.Equal(t, "1", snap.Sales[0].ID)
	assert.Equal(t, "2024-03-05", snap.Sales[1].Date)

	require.Len(t, snap.ProductionHistory, 1)
	assert.Equal(t, 3, snap.ProductionHistory[0].TotalBatches)
	assert.Empty(t, snap.ProductionHistory[0].Targets)

	// sheets the spreadsheet lacks read as empty
	assert.Empty(t, snap.RawMaterials)
	assert.Empty(t, snap.RequestOrders)
}

func TestStore_SaveScheduleAssignsID(t *testing.T) {
	f := &fakeSheets{tables: map[string][][]any{}}
	s := newFakeStore(t, f)

	id, err := s.SaveSchedule(context.Background(), domain.SavedSchedule{
		StartDate:    "2024-03-04",
		Data:         map[string][]int{"FG001": {1, 0, 0, 0, 0, 0, 0}},
		TotalBatches: 1,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, f.writes, 1)
	assert.Equal(t, "POST productionHistory:append", f.writes[0])
	values := f.bodies[0]["values"].([]any)
	row := values[0].([]any)
	assert.Equal(t, id, row[0])
	assert.Equal(t, `{"FG001":[1,0,0,0,0,0,0]}`, row[1])
	assert.Equal(t, "{}", row[5])
}

func TestStore_UpdateRequestOrder(t *testing.T) {
	f := &fakeSheets{tables: map[string][][]any{
		repository.SheetRequestOrders: {
			{"id", "date", "items", "status", "deadline", "createdAt"},
			{"RO-111111", "2024-03-01", "[]", "Draft", "2024-03-04", "x"},
			{"RO-222222", "2024-03-02", "[]", "Draft", "2024-03-05", "x"},
		},
	}}
	s := newFakeStore(t, f)

	err := s.UpdateRequestOrder(context.Background(), domain.RequestOrder{ID: "RO-222222", Status: domain.OrderSent, Deadline: "2024-03-09", Items: []domain.RequestOrderItem{}})
	require.NoError(t, err)

	require.Len(t, f.writes, 1)
	assert.Equal(t, "PUT requestOrders!C3:E3", f.writes[0])
	row := f.bodies[0]["values"].([]any)[0].([]any)
	assert.Equal(t, []any{"[]", "Sent", "2024-03-09"}, row)

	err = s.UpdateRequestOrder(context.Background(), domain.RequestOrder{ID: "RO-999999"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_SyncRawMaterialsRewritesSheet(t *testing.T) {
	f := &fakeSheets{tables: map[string][][]any{}}
	s := newFakeStore(t, f)

	err := s.SyncRawMaterials(context.Background(), []domain.RawMaterial{{ID: "RM001", Name: "Daging", ConversionFactor: 1000}})
	require.NoError(t, err)

	require.Len(t, f.writes, 2)
	assert.Equal(t, "POST rawMaterials:clear", f.writes[0])
	assert.Equal(t, "PUT rawMaterials!A1", f.writes[1])
	values := f.bodies[1]["values"].([]any)
	require.Len(t, values, 2)
	assert.Equal(t, "id", values[0].([]any)[0])
	assert.Equal(t, "RM001", values[1].([]any)[0])
}

func TestTableRows(t *testing.T) {
	assert.Nil(t, tableRows(nil))
	assert.Nil(t, tableRows([][]any{{"id"}}))

	rows := tableRows([][]any{{" id ", "name"}, {"RM001"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "RM001", rows[0]["id"])
	assert.NotContains(t, rows[0], "name")
}
