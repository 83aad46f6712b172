package repository

import (
	"encoding/json"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

// The row encoders produce cells in Columns order. Nested values are
// stored as JSON text.

func RawMaterialRow(m domain.RawMaterial) []any {
	return []any{m.ID, m.Name, m.UsageUnit, m.PurchaseUnit, m.ConversionFactor, m.Stock, m.MinStock,
		m.PricePerPurchaseUnit, m.LeadTime, m.IsProcessed, m.SourceMaterialID, m.ProcessingYield}
}

func FinishGoodRow(g domain.FinishGood) []any {
	ingredients := g.Ingredients
	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}
	return []any{g.ID, g.Name, g.QtyPerBatch, g.Stock, g.HPP, g.IsProductionReady, jsonText(ingredients)}
}

func SalesRow(s domain.SalesRecord) []any {
	return []any{s.ID, s.SKUID, s.Date, s.QuantitySold}
}

func ScheduleRow(s domain.SavedSchedule) []any {
	return []any{s.ID, jsonText(s.Data), s.StartDate, s.CreatedAt, s.TotalBatches, jsonText(orEmpty(s.Targets))}
}

func RMRequirementRow(r domain.SavedRMRequirement) []any {
	return []any{r.ID, r.StartDate, r.CreatedAt, jsonText(r.GlobalData), jsonText(r.PerSkuData)}
}

func RequestOrderRow(o domain.RequestOrder) []any {
	return []any{o.ID, o.Date, jsonText(o.Items), string(o.Status), o.Deadline, o.CreatedAt}
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func orEmpty(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
