package requirement

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materials() []domain.RawMaterial {
	return []domain.RawMaterial{
		{ID: "RM001", Name: "Daging Sapi", UsageUnit: "gr", PurchaseUnit: "kg", ConversionFactor: 1000, Stock: 5000, LeadTime: 2, MinStock: 1000},
		{ID: "RM002", Name: "Tepung Tapioka", UsageUnit: "gr", PurchaseUnit: "sak"},
		{ID: "RM003", Name: "Daging Giling", IsProcessed: true, SourceMaterialID: "RM001", ProcessingYield: 0.8},
	}
}

func TestCompute_UnprocessedConservation(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", IsProductionReady: true, Ingredients: []domain.Ingredient{{MaterialID: "RM002", Quantity: 500}}},
		{ID: "FG002", IsProductionReady: true, Ingredients: []domain.Ingredient{{MaterialID: "RM002", Quantity: 100}}},
	}
	grid := map[string][]int{"FG001": {1, 2, 0, 0, 0, 0, 0}, "FG002": {0, 0, 0, 0, 0, 0, 4}}

	req := Compute(grid, products, materials())

	assert.InDelta(t, 3*500+4*100, req.Global["RM002"], 1e-9)
	assert.Equal(t, 1500.0, req.PerSKU["FG001"]["RM002"])
	assert.Equal(t, 400.0, req.PerSKU["FG002"]["RM002"])
}

func TestCompute_ProcessedMaterialConvertsToSource(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", IsProductionReady: true, Ingredients: []domain.Ingredient{{MaterialID: "RM003", Quantity: 400}}},
	}
	grid := map[string][]int{"FG001": {2, 0, 0, 0, 0, 0, 0}}

	req := Compute(grid, products, materials())

	assert.InDelta(t, 2*400/0.8, req.Global["RM001"], 1e-9)
	assert.NotContains(t, req.Global, "RM003")
	assert.Equal(t, 800.0, req.PerSKU["FG001"]["RM003"])
}

func TestCompute_InvalidYieldTreatedAsOne(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", IsProductionReady: true, Ingredients: []domain.Ingredient{{MaterialID: "RM009", Quantity: 10}}},
	}
	grid := map[string][]int{"FG001": {1, 0, 0, 0, 0, 0, 0}}

	for _, yield := range []float64{-0.5, 0, math.Inf(1), math.Inf(-1), math.NaN()} {
		t.Run(fmt.Sprint(yield), func(t *testing.T) {
			mats := append(materials(), domain.RawMaterial{ID: "RM009", IsProcessed: true, SourceMaterialID: "RM001", ProcessingYield: yield})

			req := Compute(grid, products, mats)

			assert.Equal(t, 10.0, req.Global["RM001"])
			assert.Equal(t, 10.0, req.PerSKU["FG001"]["RM009"])
		})
	}
}

func TestCompute_RepeatedIngredientLine(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", IsProductionReady: true, Ingredients: []domain.Ingredient{
			{MaterialID: "RM002", Quantity: 100},
			{MaterialID: "RM002", Quantity: 30},
		}},
	}

	req := Compute(map[string][]int{"FG001": {2}}, products, materials())

	assert.Equal(t, 260.0, req.Global["RM002"])
	assert.Equal(t, 60.0, req.PerSKU["FG001"]["RM002"])
}

func TestCompute_SkipsIdleAndInactiveProducts(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", IsProductionReady: true, Ingredients: []domain.Ingredient{{MaterialID: "RM002", Quantity: 1}}},
		{ID: "FG002", IsProductionReady: true},
		{ID: "FG003", IsProductionReady: false, Ingredients: []domain.Ingredient{{MaterialID: "RM002", Quantity: 1}}},
	}
	grid := map[string][]int{"FG002": {5}, "FG003": {5}}

	req := Compute(grid, products, materials())

	assert.Empty(t, req.Global)
	assert.Empty(t, req.PerSKU)
}

func TestCompute_UnknownMaterialCountsAsPurchased(t *testing.T) {
	products := []domain.FinishGood{
		{ID: "FG001", IsProductionReady: true, Ingredients: []domain.Ingredient{{MaterialID: "RM404", Quantity: 3}, {MaterialID: "RM002", Quantity: -2}}},
	}

	req := Compute(map[string][]int{"FG001": {1}}, products, materials())

	assert.Equal(t, 3.0, req.Global["RM404"])
	assert.Equal(t, 0.0, req.Global["RM002"])
}

func TestCompute_EmptyInputs(t *testing.T) {
	req := Compute(nil, nil, nil)

	assert.NotNil(t, req.Global)
	assert.Empty(t, req.Global)
	assert.Empty(t, req.PerSKU)
}

func TestToDemands(t *testing.T) {
	req := Requirement{Global: map[string]float64{"RM001": 1000, "RM404": 5}}

	demands, err := req.ToDemands(materials())
	require.NoError(t, err)
	require.Len(t, demands, 2)

	assert.Equal(t, domain.MaterialDemand{
		ID:               "RM001",
		Name:             "Daging Sapi",
		UsageAmount:      1000,
		UsageUnit:        "gr",
		LeadTime:         2,
		CurrentStock:     5000,
		PurchaseUnit:     "kg",
		ConversionFactor: 1000,
		MinStock:         1000,
	}, demands[0])

	assert.Equal(t, "RM404", demands[1].Name)
	assert.Equal(t, 1.0, demands[1].ConversionFactor)

	_, err = Requirement{}.ToDemands(materials())
	assert.ErrorIs(t, err, ErrNoRequirements)
}

func TestArchive(t *testing.T) {
	req := Requirement{
		Global: map[string]float64{"RM001": 1000},
		PerSKU: map[string]map[string]float64{"FG001": {"RM003": 800}},
	}

	rec := req.Archive("2024-03-04", time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	req.Global["RM001"] = 0

	assert.Empty(t, rec.ID)
	assert.Equal(t, "2024-03-04", rec.StartDate)
	assert.Equal(t, "2024-03-01T08:00:00Z", rec.CreatedAt)
	assert.Equal(t, 1000.0, rec.GlobalData["RM001"])
	assert.Equal(t, 800.0, rec.PerSkuData["FG001"]["RM003"])
}
