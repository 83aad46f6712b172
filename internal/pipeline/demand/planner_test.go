package demand

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatStats(id string, daily float64) analytics.SkuDemandStats {
	return analytics.SkuDemandStats{
		ID:            id,
		TotalSold:     daily * 30,
		AverageDaily:  daily,
		AverageWeekly: daily * 7,
		PeakWeekly:    daily * 7,
		PeakDayIdx:    3,
		PeakDayName:   "Rabu",
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name        string
		stock       float64
		request     int
		wantFinal   float64
		wantBatches int
		overridden  bool
	}{
		{"stock covers demand", 200, 0, 0, 0, false},
		{"stock short of demand", 50, 0, 130, 4, false},
		{"request wins over average", 50, 300, 290, 8, true},
		{"request below average ignored", 50, 100, 130, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := []domain.FinishGood{{ID: "FG001", QtyPerBatch: 40, Stock: tt.stock, IsProductionReady: true}}

			got := Plan([]analytics.SkuDemandStats{flatStats("FG001", 20)}, products, DefaultSafetyDays, map[string]int{"FG001": tt.request})

			require.Len(t, got, 1)
			assert.Equal(t, 140.0, got[0].AvgWeekly)
			assert.Equal(t, 40.0, got[0].SafetyStockQty)
			assert.Equal(t, tt.wantFinal, got[0].FinalTarget)
			assert.Equal(t, tt.wantBatches, got[0].BatchesNeeded)
			assert.Equal(t, tt.overridden, got[0].IsOverridden)
			assert.Equal(t, tt.wantFinal+tt.stock, got[0].EstimationStock)
		})
	}
}

func TestPlan_SkipsInactiveAndDefaultsBatchSize(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", Stock: 0, IsProductionReady: true},
		{ID: "FG002", IsProductionReady: false},
	}

	got := Plan([]analytics.SkuDemandStats{flatStats("FG001", 1)}, products, 0, nil)

	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].QtyPerBatch)
	assert.Equal(t, 7, got[0].BatchesNeeded)
}

func TestPlan_DaysToOut(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "A", Stock: 100, IsProductionReady: true},
		{ID: "B", Stock: 100, IsProductionReady: true},
		{ID: "C", IsProductionReady: true},
	}

	got := Plan([]analytics.SkuDemandStats{flatStats("A", 20)}, products, 2, nil)

	require.Len(t, got, 3)
	assert.Equal(t, Days(5), got[0].DaysToOut)
	assert.True(t, math.IsInf(float64(got[1].DaysToOut), 1))
	assert.Equal(t, Days(0), got[2].DaysToOut)
	assert.Nil(t, got[1].PeakDayIdx)

	raw, err := json.Marshal(got[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"daysToOut":null`)
}

func TestNewHandoff(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", QtyPerBatch: 40, Stock: 50, IsProductionReady: true},
		{ID: "FG002", QtyPerBatch: 10, IsProductionReady: true},
	}

	h := NewHandoff(Plan([]analytics.SkuDemandStats{flatStats("FG001", 20)}, products, 2, nil))

	assert.Equal(t, map[string]int{"FG001": 4, "FG002": 0}, h.Targets)
	assert.Equal(t, map[string]int{"FG001": 3}, h.Recommendations)
}

func TestRequests(t *testing.T) {
	r := Requests{}
	r.Set("FG001", "250")
	r.Set("FG002", "abc")
	r.Set("FG009", "5")

	r.Retain([]domain.FinishGood{{ID: "FG001", IsProductionReady: true}, {ID: "FG002", IsProductionReady: true}})

	assert.Equal(t, Requests{"FG001": 250, "FG002": 0}, r)
}
