// backend-go/internal/domain/models.go
package domain

import "math"

// RawMaterial is a purchasable (or derived) input to production. Stock is held
// in usage units; prices are per purchase unit.
type RawMaterial struct {
	ID                   string  `json:"id" db:"id"`
	Name                 string  `json:"name" db:"name"`
	UsageUnit            string  `json:"usageUnit" db:"usage_unit"`
	PurchaseUnit         string  `json:"purchaseUnit" db:"purchase_unit"`
	ConversionFactor     float64 `json:"conversionFactor" db:"conversion_factor"`
	Stock                float64 `json:"stock" db:"stock"`
	MinStock             float64 `json:"minStock" db:"min_stock"`
	PricePerPurchaseUnit float64 `json:"pricePerPurchaseUnit" db:"price_per_purchase_unit"`
	LeadTime             float64 `json:"leadTime" db:"lead_time"`
	IsProcessed          bool    `json:"isProcessed" db:"is_processed"`
	SourceMaterialID     string  `json:"sourceMaterialId,omitempty" db:"source_material_id"`
	ProcessingYield      float64 `json:"processingYield,omitempty" db:"processing_yield"`
}

// Conversion returns the purchase-to-usage multiplier, 1 when unset or invalid.
func (m RawMaterial) Conversion() float64 {
	return orOne(m.ConversionFactor)
}

// Yield returns the processing yield, 1 when unset or invalid.
func (m RawMaterial) Yield() float64 {
	return orOne(m.ProcessingYield)
}

// Source reports the material this one is processed from, if any.
func (m RawMaterial) Source() (string, bool) {
	if m.IsProcessed && m.SourceMaterialID != "" {
		return m.SourceMaterialID, true
	}
	return "", false
}

// Ingredient is one BOM line: usage units of a material consumed per batch.
type Ingredient struct {
	MaterialID string  `json:"materialId"`
	Quantity   float64 `json:"quantity"`
}

// FinishGood is a sellable product (SKU) with its recipe.
type FinishGood struct {
	ID                string       `json:"id" db:"id"`
	Name              string       `json:"name" db:"name"`
	QtyPerBatch       float64      `json:"qtyPerBatch" db:"qty_per_batch"`
	Stock             float64      `json:"stock" db:"stock"`
	Ingredients       []Ingredient `json:"ingredients" db:"-"`
	HPP               float64      `json:"hpp" db:"hpp"`
	IsProductionReady bool         `json:"isProductionReady" db:"is_production_ready"`
	MaxCapacity       *int         `json:"maxCapacity,omitempty" db:"max_capacity"`
}

// BatchSize returns units per batch, 1 when unset.
func (g FinishGood) BatchSize() float64 {
	return orOne(g.QtyPerBatch)
}

// ActiveGoods keeps only production-ready products, preserving order.
func ActiveGoods(goods []FinishGood) []FinishGood {
	active := make([]FinishGood, 0, len(goods))
	for _, g := range goods {
		if g.IsProductionReady {
			active = append(active, g)
		}
	}
	return active
}

// SalesRecord is one sales line. Several records may share a SKU and date.
type SalesRecord struct {
	ID           string  `json:"id"`
	SKUID        string  `json:"skuId"`
	Date         string  `json:"date"`
	QuantitySold float64 `json:"quantitySold"`
}

// SavedSchedule is a persisted weekly production schedule.
type SavedSchedule struct {
	ID           string           `json:"id" db:"id"`
	StartDate    string           `json:"startDate" db:"start_date"`
	CreatedAt    string           `json:"createdAt" db:"created_at"`
	Data         map[string][]int `json:"data" db:"-"`
	Targets      map[string]int   `json:"targets" db:"-"`
	TotalBatches int              `json:"totalBatches" db:"total_batches"`
}

// SavedRMRequirement is an archived material requirement calculation.
type SavedRMRequirement struct {
	ID         string                        `json:"id" db:"id"`
	StartDate  string                        `json:"startDate" db:"start_date"`
	CreatedAt  string                        `json:"createdAt" db:"created_at"`
	GlobalData map[string]float64            `json:"globalData" db:"-"`
	PerSkuData map[string]map[string]float64 `json:"perSkuData" db:"-"`
}

// MaterialDemand is one material's weekly requirement handed from the
// requirement calculator to the reorder engine.
type MaterialDemand struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	UsageAmount      float64 `json:"usageAmount"`
	UsageUnit        string  `json:"usageUnit"`
	LeadTime         float64 `json:"leadTime"`
	CurrentStock     float64 `json:"currentStock"`
	PurchaseUnit     string  `json:"purchaseUnit"`
	ConversionFactor float64 `json:"conversionFactor"`
	MinStock         float64 `json:"minStock"`
}

// DeliveryBatch records one physical receipt against an order item.
type DeliveryBatch struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Quantity   float64 `json:"quantity"`
	ReceivedBy string  `json:"receivedBy"`
}

type RequestOrderItem struct {
	MaterialID       string          `json:"materialId"`
	MaterialName     string          `json:"materialName"`
	Quantity         float64         `json:"quantity"`
	ReceivedQuantity float64         `json:"receivedQuantity"`
	Unit             string          `json:"unit"`
	Status           ItemStatus      `json:"status"`
	Deliveries       []DeliveryBatch `json:"deliveries"`
	ActualOrderQty   float64         `json:"actualOrderQty,omitempty"`
	ActualOrderDate  string          `json:"actualOrderDate,omitempty"`
	EstimatedArrival string          `json:"estimatedArrival,omitempty"`
}

// Target is the quantity that completes the item: the revised order
// quantity when one was recorded, otherwise the original quantity.
func (it RequestOrderItem) Target() float64 {
	if it.ActualOrderQty != 0 && !math.IsNaN(it.ActualOrderQty) {
		return it.ActualOrderQty
	}
	return it.Quantity
}

// RequestOrder is a purchase order for raw materials.
type RequestOrder struct {
	ID        string             `json:"id" db:"id"`
	Date      string             `json:"date" db:"date"`
	CreatedAt string             `json:"createdAt" db:"created_at"`
	Deadline  string             `json:"deadline,omitempty" db:"deadline"`
	Items     []RequestOrderItem `json:"items" db:"-"`
	Status    OrderStatus        `json:"status" db:"status"`
}

// Snapshot is the full data set read from the store in one fetch.
type Snapshot struct {
	RawMaterials      []RawMaterial        `json:"rawMaterials"`
	FinishGoods       []FinishGood         `json:"finishGoods"`
	Sales             []SalesRecord        `json:"salesData"`
	ProductionHistory []SavedSchedule      `json:"productionHistory"`
	RMHistory         []SavedRMRequirement `json:"rmHistory"`
	RequestOrders     []RequestOrder       `json:"requestOrders"`
}

// MaterialIndex maps material id to material.
func (s *Snapshot) MaterialIndex() map[string]RawMaterial {
	return IndexMaterials(s.RawMaterials)
}

func IndexMaterials(materials []RawMaterial) map[string]RawMaterial {
	idx := make(map[string]RawMaterial, len(materials))
	for _, m := range materials {
		idx[m.ID] = m
	}
	return idx
}

// orOne guards divisors: zero, negative and non-finite values become 1.
func orOne(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return v
}
