// Package costing resolves material unit costs and rolls them up through a
// product's bill of materials.
package costing

import (
	"math"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Resolver computes costs against a fixed set of materials.
type Resolver struct {
	materials map[string]domain.RawMaterial
}

// NewResolver indexes materials by id. Later duplicates win.
func NewResolver(materials []domain.RawMaterial) *Resolver {
	return &Resolver{materials: domain.IndexMaterials(materials)}
}

// UnitCost returns the cost of one usage unit of m.
//
// A processed material is priced through its source: the source's usage-unit
// cost divided by the processing yield. Only one hop is followed; a missing
// source costs 0.
func (r *Resolver) UnitCost(m domain.RawMaterial) decimal.Decimal {
	if m.IsProcessed && m.SourceMaterialID != "" {
		src, ok := r.materials[m.SourceMaterialID]
		if !ok {
			return decimal.Zero
		}
		return purchaseUnitCost(src).Div(factor(m.Yield()))
	}
	return purchaseUnitCost(m)
}

// BatchCost sums ingredient costs for one batch of g. Ingredients pointing at
// unknown materials are skipped.
func (r *Resolver) BatchCost(g domain.FinishGood) decimal.Decimal {
	total := decimal.Zero
	for _, ing := range g.Ingredients {
		m, ok := r.materials[ing.MaterialID]
		if !ok {
			continue
		}
		total = total.Add(r.UnitCost(m).Mul(num(ing.Quantity)))
	}
	return total
}

// ProductCost returns the BOM reference cost of one unit of g.
func (r *Resolver) ProductCost(g domain.FinishGood) decimal.Decimal {
	if len(g.Ingredients) == 0 {
		return decimal.Zero
	}
	return r.BatchCost(g).Div(factor(g.BatchSize()))
}

// ResolveUnitCost is the float form of Resolver.UnitCost.
func ResolveUnitCost(m domain.RawMaterial, all []domain.RawMaterial) float64 {
	return NewResolver(all).UnitCost(m).InexactFloat64()
}

// AggregateBOMCost is the float form of Resolver.ProductCost.
func AggregateBOMCost(g domain.FinishGood, all []domain.RawMaterial) float64 {
	return NewResolver(all).ProductCost(g).InexactFloat64()
}

func purchaseUnitCost(m domain.RawMaterial) decimal.Decimal {
	return num(m.PricePerPurchaseUnit).Div(factor(m.Conversion()))
}

// num converts v, mapping NaN and infinities to zero.
func num(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func factor(v float64) decimal.Decimal {
	d := num(v)
	if !d.IsPositive() {
		return one
	}
	return d
}
