package costing

import (
	"math"
	"testing"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleMaterials() []domain.RawMaterial {
	return []domain.RawMaterial{
		{ID: "RM001", Name: "Daging Sapi", ConversionFactor: 1000, PricePerPurchaseUnit: 120000},
		{ID: "RM002", Name: "Tepung Tapioka", ConversionFactor: 0, PricePerPurchaseUnit: 15000},
		{ID: "RM003", Name: "Daging Giling", IsProcessed: true, SourceMaterialID: "RM001", ProcessingYield: 0.8},
		{ID: "RM004", Name: "Ayam Giling", IsProcessed: true, SourceMaterialID: "RM404", ProcessingYield: 0.5},
		{ID: "RM005", Name: "Bawang Goreng", IsProcessed: true, SourceMaterialID: "RM002"},
	}
}

func TestResolveUnitCost(t *testing.T) {
	all := sampleMaterials()

	tests := []struct {
		name string
		m    domain.RawMaterial
		want float64
	}{
		{"plain material", all[0], 120},
		{"zero conversion treated as one", all[1], 15000},
		{"processed through source with yield", all[2], 150},
		{"missing source costs nothing", all[3], 0},
		{"processed without yield uses one", all[4], 15000},
		{"negative yield uses one", domain.RawMaterial{ID: "RM006", IsProcessed: true, SourceMaterialID: "RM001", ProcessingYield: -0.5}, 120},
		{"infinite yield uses one", domain.RawMaterial{ID: "RM007", IsProcessed: true, SourceMaterialID: "RM001", ProcessingYield: math.Inf(1)}, 120},
		{"negative conversion treated as one", domain.RawMaterial{ID: "RM008", ConversionFactor: -1000, PricePerPurchaseUnit: 15000}, 15000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ResolveUnitCost(tt.m, all), 1e-9)
		})
	}
}

func TestAggregateBOMCost(t *testing.T) {
	all := sampleMaterials()

	g := domain.FinishGood{
		ID:          "FG001",
		QtyPerBatch: 40,
		Ingredients: []domain.Ingredient{
			{MaterialID: "RM003", Quantity: 2000}, // 2000 * 150
			{MaterialID: "RM001", Quantity: 1000}, // 1000 * 120
			{MaterialID: "RM999", Quantity: 50},   // unknown, skipped
		},
	}

	// (300000 + 120000) / 40
	assert.InDelta(t, 10500, AggregateBOMCost(g, all), 1e-9)
}

func TestAggregateBOMCost_EmptyRecipe(t *testing.T) {
	assert.Equal(t, 0.0, AggregateBOMCost(domain.FinishGood{ID: "FG002", QtyPerBatch: 10}, sampleMaterials()))
}

func TestAggregateBOMCost_ZeroBatchSizeTreatedAsOne(t *testing.T) {
	g := domain.FinishGood{
		ID:          "FG003",
		Ingredients: []domain.Ingredient{{MaterialID: "RM001", Quantity: 10}},
	}

	assert.InDelta(t, 1200, AggregateBOMCost(g, sampleMaterials()), 1e-9)
}

func TestResolver_BatchCost(t *testing.T) {
	r := NewResolver(sampleMaterials())

	g := domain.FinishGood{Ingredients: []domain.Ingredient{{MaterialID: "RM002", Quantity: 2}}}

	assert.Equal(t, "30000", r.BatchCost(g).String())
}
