package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return loc
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 12.5, 12.5},
		{"int", 3, 3},
		{"numeric string", " 12.5 ", 12.5},
		{"thousands separator", "1,500", 1500},
		{"garbage", "abc", 0},
		{"empty", "", 0},
		{"nil", nil, 0},
		{"true", true, 1},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.in))
		})
	}
}

func TestInt(t *testing.T) {
	assert.Equal(t, 12, Int("12abc"))
	assert.Equal(t, 3, Int("3.7"))
	assert.Equal(t, -4, Int("-4"))
	assert.Equal(t, 0, Int(""))
	assert.Equal(t, 0, Int("x1"))
	assert.Equal(t, 3, Int(3.9))
	assert.Equal(t, 0, Int(nil))
}

func TestOptionalInt(t *testing.T) {
	assert.Nil(t, OptionalInt(""))
	assert.Nil(t, OptionalInt("  abc"))
	require.NotNil(t, OptionalInt("0"))
	assert.Equal(t, 0, *OptionalInt("0"))
	assert.Equal(t, 150, *OptionalInt(" 150 pcs"))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool("TRUE", false))
	assert.False(t, Bool("false", true))
	assert.True(t, Bool(nil, true))
	assert.True(t, Bool(1.0, false))
	assert.True(t, Bool("maybe", true))
}

func TestDate(t *testing.T) {
	loc := jakarta(t)

	assert.Equal(t, "2024-03-05", Date("2024-03-05", loc))
	// 17:30 UTC is already the next calendar day in Jakarta.
	assert.Equal(t, "2024-03-05", Date("2024-03-04T17:30:00Z", loc))
	assert.Equal(t, "2024-03-05", Date(45356.0, loc))
	assert.Equal(t, "2024-03-05", Date("3/5/2024", loc))
	assert.Equal(t, "2024-03-05", Date(time.Date(2024, 3, 5, 23, 0, 0, 0, loc), loc))
	assert.Equal(t, "", Date("not a date", loc))
	assert.Equal(t, "", Date(nil, loc))
}

func TestDecoder_FinishGoods(t *testing.T) {
	dec := NewDecoder(time.UTC)

	goods := dec.FinishGoods([]Row{
		{
			"id":          "FG001",
			"name":        "Bakso Halus",
			"qtyPerBatch": "40",
			"stock":       200.0,
			"ingredients": `[{"materialId":"RM001","quantity":"15"},{"materialId":"RM002","quantity":2.5}]`,
		},
		{
			"id":                "FG002",
			"qtyPerBatch":       "",
			"isProductionReady": "FALSE",
			"ingredients":       `[{"materialId":`,
		},
		{"name": "no id"},
	})

	require.Len(t, goods, 2)

	assert.Equal(t, 40.0, goods[0].QtyPerBatch)
	assert.Equal(t, 200.0, goods[0].Stock)
	assert.True(t, goods[0].IsProductionReady)
	assert.Equal(t, []domain.Ingredient{
		{MaterialID: "RM001", Quantity: 15},
		{MaterialID: "RM002", Quantity: 2.5},
	}, goods[0].Ingredients)

	assert.False(t, goods[1].IsProductionReady)
	assert.Equal(t, 1.0, goods[1].BatchSize())
	assert.NotNil(t, goods[1].Ingredients)
	assert.Empty(t, goods[1].Ingredients)
}

func TestDecoder_RawMaterials(t *testing.T) {
	dec := NewDecoder(time.UTC)

	materials := dec.RawMaterials([]Row{
		{
			"id":                   "RM001",
			"conversionFactor":     "1000",
			"pricePerPurchaseUnit": "125000",
			"isProcessed":          "",
			"leadTime":             2,
		},
		{
			"id":               "RM009",
			"isProcessed":      true,
			"sourceMaterialId": "RM001",
			"processingYield":  "0.8",
		},
	})

	require.Len(t, materials, 2)
	assert.Equal(t, 1000.0, materials[0].ConversionFactor)
	assert.Equal(t, 125000.0, materials[0].PricePerPurchaseUnit)
	assert.Equal(t, 2.0, materials[0].LeadTime)
	assert.False(t, materials[0].IsProcessed)

	src, ok := materials[1].Source()
	assert.True(t, ok)
	assert.Equal(t, "RM001", src)
	assert.InDelta(t, 0.8, materials[1].Yield(), 1e-9)
}

func TestDecoder_Schedules(t *testing.T) {
	dec := NewDecoder(time.UTC)

	schedules := dec.Schedules([]Row{
		{
			"id":           "S1",
			"startDate":    "2024-03-04",
			"data":         `{"FG001":[1,2,"3"],"FG002":[0,0,0,0,0,0,0,9]}`,
			"targets":      map[string]any{"FG001": "6"},
			"totalBatches": "6",
		},
		{
			"id":        "S2",
			"startDate": "2024-03-11",
			"data":      "{broken",
			"targets":   "",
		},
		{"id": "S3"},
	})

	require.Len(t, schedules, 2)
	assert.Equal(t, []int{1, 2, 3, 0, 0, 0, 0}, schedules[0].Data["FG001"])
	assert.Len(t, schedules[0].Data["FG002"], 7)
	assert.Equal(t, map[string]int{"FG001": 6}, schedules[0].Targets)
	assert.Equal(t, 6, schedules[0].TotalBatches)

	assert.NotNil(t, schedules[1].Data)
	assert.Empty(t, schedules[1].Data)
	assert.Empty(t, schedules[1].Targets)
}

func TestDecoder_RequestOrders(t *testing.T) {
	dec := NewDecoder(time.UTC)

	orders := dec.RequestOrders([]Row{
		{
			"id":        "RO-123456",
			"date":      "2024-03-04",
			"status":    "sent",
			"deadline":  "2024-03-07",
			"JSONItems": `[{"materialId":"RM001","quantity":"5","receivedQuantity":"2","status":"Partial","deliveries":[{"id":"DEL-1","quantity":"2"}]}]`,
		},
		{
			"id":     "RO-654321",
			"status": "unknown",
			"items":  "garbage",
		},
	})

	require.Len(t, orders, 2)
	assert.Equal(t, domain.OrderSent, orders[0].Status)
	require.Len(t, orders[0].Items, 1)
	item := orders[0].Items[0]
	assert.Equal(t, 5.0, item.Quantity)
	assert.Equal(t, 2.0, item.ReceivedQuantity)
	assert.Equal(t, domain.ItemPartial, item.Status)
	require.Len(t, item.Deliveries, 1)
	assert.Equal(t, 2.0, item.Deliveries[0].Quantity)

	assert.Equal(t, domain.OrderDraft, orders[1].Status)
	assert.NotNil(t, orders[1].Items)
	assert.Empty(t, orders[1].Items)
}

func TestDecoder_RMHistory(t *testing.T) {
	dec := NewDecoder(time.UTC)

	history := dec.RMHistory([]Row{{
		"id":         "H1",
		"startDate":  "2024-03-04",
		"globalData": `{"RM001":"12.5"}`,
		"perSkuData": `{"FG001":{"RM009":10}}`,
	}})

	require.Len(t, history, 1)
	assert.Equal(t, map[string]float64{"RM001": 12.5}, history[0].GlobalData)
	assert.Equal(t, 10.0, history[0].PerSkuData["FG001"]["RM009"])
}

func TestDecoder_Snapshot(t *testing.T) {
	dec := NewDecoder(time.UTC)

	snap := dec.Snapshot(map[string]any{
		"rawMaterials": []any{map[string]any{"id": "RM001"}},
		"salesData": []any{
			map[string]any{"id": "1", "skuId": "FG001", "date": "2024-03-04", "quantitySold": "7"},
			map[string]any{"id": "2", "skuId": "FG001", "date": "", "quantitySold": "7"},
		},
		"requestOrders": "not json",
	})

	assert.Len(t, snap.RawMaterials, 1)
	assert.Len(t, snap.Sales, 1)
	assert.Equal(t, 7.0, snap.Sales[0].QuantitySold)
	assert.Empty(t, snap.FinishGoods)
	assert.Empty(t, snap.RequestOrders)
}

func TestCanonicalize(t *testing.T) {
	row := Row{
		"ID":          "RM101",
		"Nama":        "Daging Sapi",
		"Stok":        "100",
		"Harga":       125000,
		"Lead Time":   "2",
		"Unrelated":   "x",
		"usage_unit":  "kg",
		"Satuan Beli": "",
	}

	got := Canonicalize(row, RawMaterialAliases)

	assert.Equal(t, "RM101", got["id"])
	assert.Equal(t, "Daging Sapi", got["name"])
	assert.Equal(t, "100", got["stock"])
	assert.Equal(t, 125000, got["pricePerPurchaseUnit"])
	assert.Equal(t, "2", got["leadTime"])
	assert.Equal(t, "kg", got["usageUnit"])
	assert.NotContains(t, got, "purchaseUnit")
	assert.NotContains(t, got, "Unrelated")
}

func TestDecoder_ImportSales(t *testing.T) {
	dec := NewDecoder(time.UTC)

	sales := dec.ImportSales([]Row{
		{"SKU": "FG001", "Tanggal": "2024-03-04", "Qty": "12"},
		{"SKU": "", "Tanggal": "2024-03-04", "Qty": "5"},
	})

	require.Len(t, sales, 1)
	assert.NotEmpty(t, sales[0].ID)
	assert.Equal(t, "FG001", sales[0].SKUID)
	assert.Equal(t, 12.0, sales[0].QuantitySold)
}

func TestDecoder_ImportRawMaterials_DefaultsConversion(t *testing.T) {
	dec := NewDecoder(time.UTC)

	materials := dec.ImportRawMaterials([]Row{{"Name": "Tepung", "Unit": "gr"}})

	require.Len(t, materials, 1)
	assert.Contains(t, materials[0].ID, "RM-")
	assert.Equal(t, 1.0, materials[0].ConversionFactor)
	assert.Equal(t, "gr", materials[0].UsageUnit)
}
