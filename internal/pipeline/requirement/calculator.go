// Package requirement expands scheduled batches into raw material usage.
package requirement

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

// ErrNoRequirements is returned when a sync is asked for with nothing
// scheduled.
var ErrNoRequirements = errors.New("no material requirements: fill in the production schedule first")

// Requirement is the material usage of one schedule. Global is keyed by the
// material that has to be bought, so processed materials are attributed to
// their source. PerSKU keeps the recipe's own material ids.
type Requirement struct {
	Global map[string]float64            `json:"global"`
	PerSKU map[string]map[string]float64 `json:"perSku"`
}

// Compute folds the schedule grid through the recipes of production-ready
// products.
func Compute(grid map[string][]int, products []domain.FinishGood, materials []domain.RawMaterial) Requirement {
	req := Requirement{
		Global: make(map[string]float64),
		PerSKU: make(map[string]map[string]float64),
	}
	idx := domain.IndexMaterials(materials)

	for _, p := range domain.ActiveGoods(products) {
		batches := 0
		for _, n := range grid[p.ID] {
			batches += n
		}
		if batches <= 0 || len(p.Ingredients) == 0 {
			continue
		}

		perSKU := make(map[string]float64, len(p.Ingredients))
		for _, ing := range p.Ingredients {
			amount := float64(batches) * nonNegative(ing.Quantity)
			// a repeated ingredient line replaces the earlier one here but
			// still adds to the global total
			perSKU[ing.MaterialID] = amount

			m, ok := idx[ing.MaterialID]
			if src, processed := m.Source(); ok && processed {
				req.Global[src] += amount / m.Yield()
				continue
			}
			req.Global[ing.MaterialID] += amount
		}
		req.PerSKU[p.ID] = perSKU
	}
	return req
}

// MaterialIDs returns the keys of Global in sorted order.
func (r Requirement) MaterialIDs() []string {
	ids := make([]string, 0, len(r.Global))
	for id := range r.Global {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToDemands maps the global requirement onto material master data for the
// reorder engine, sorted by material id. Unknown materials keep their id as
// the name and a conversion factor of 1.
func (r Requirement) ToDemands(materials []domain.RawMaterial) ([]domain.MaterialDemand, error) {
	if len(r.Global) == 0 {
		return nil, ErrNoRequirements
	}

	idx := domain.IndexMaterials(materials)
	demands := make([]domain.MaterialDemand, 0, len(r.Global))
	for _, id := range r.MaterialIDs() {
		m, ok := idx[id]
		d := domain.MaterialDemand{
			ID:               id,
			Name:             id,
			UsageAmount:      r.Global[id],
			ConversionFactor: 1,
		}
		if ok {
			if m.Name != "" {
				d.Name = m.Name
			}
			d.UsageUnit = m.UsageUnit
			d.LeadTime = finite(m.LeadTime)
			d.CurrentStock = finite(m.Stock)
			d.PurchaseUnit = m.PurchaseUnit
			d.ConversionFactor = m.Conversion()
			d.MinStock = finite(m.MinStock)
		}
		demands = append(demands, d)
	}
	return demands, nil
}

// Archive builds the record stored when a calculation is archived.
func (r Requirement) Archive(startDate string, now time.Time) domain.SavedRMRequirement {
	perSKU := make(map[string]map[string]float64, len(r.PerSKU))
	for sku, m := range r.PerSKU {
		perSKU[sku] = copyQuantities(m)
	}
	return domain.SavedRMRequirement{
		StartDate:  startDate,
		CreatedAt:  now.UTC().Format(time.RFC3339Nano),
		GlobalData: copyQuantities(r.Global),
		PerSkuData: perSKU,
	}
}

func copyQuantities(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
