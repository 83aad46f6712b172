// Package demand turns sales statistics into net weekly production targets.
package demand

import (
	"encoding/json"
	"math"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
)

// DefaultSafetyDays is the safety stock cover used when none is configured.
const DefaultSafetyDays = 2

// Days is an advisory day count. Infinity means stock never runs out and is
// encoded as null.
type Days float64

func (d Days) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Target is the production requirement for one product.
type Target struct {
	SKUID            string  `json:"skuId"`
	Name             string  `json:"name"`
	AvgDaily         float64 `json:"avgDaily"`
	AvgWeekly        float64 `json:"avgWeekly"`
	PeakWeekly       float64 `json:"peakWeekly"`
	SalesRequest     int     `json:"salesRequest"`
	QtyPerBatch      float64 `json:"qtyPerBatch"`
	StockOnHand      float64 `json:"stockOnHand"`
	PeakDayName      string  `json:"peakDayName,omitempty"`
	PeakDayIdx       *int    `json:"peakDayIdx,omitempty"`
	SafetyStockQty   float64 `json:"safetyStockQty"`
	GrossRequirement float64 `json:"grossRequirement"`
	FinalTarget      float64 `json:"finalTarget"`
	EstimationStock  float64 `json:"estimationStock"`
	BatchesNeeded    int     `json:"batchesNeeded"`
	IsOverridden     bool    `json:"isOverridden"`
	DaysToOut        Days    `json:"daysToOut"`
}

// Plan computes targets for production-ready products, in product order.
// Products missing from stats plan from zero demand. requests holds manual
// weekly sales requests per SKU.
func Plan(stats []analytics.SkuDemandStats, products []domain.FinishGood, safetyDays int, requests map[string]int) []Target {
	if safetyDays < 0 {
		safetyDays = 0
	}

	byID := make(map[string]analytics.SkuDemandStats, len(stats))
	for _, s := range stats {
		byID[s.ID] = s
	}

	active := domain.ActiveGoods(products)
	targets := make([]Target, 0, len(active))
	for _, p := range active {
		t := Target{
			SKUID:        p.ID,
			Name:         p.Name,
			QtyPerBatch:  p.BatchSize(),
			StockOnHand:  finite(p.Stock),
			SalesRequest: requests[p.ID],
		}
		if s, ok := byID[p.ID]; ok {
			idx := s.PeakDayIdx
			t.AvgDaily = finite(s.AverageDaily)
			t.AvgWeekly = math.Round(finite(s.AverageWeekly))
			t.PeakWeekly = math.Round(finite(s.PeakWeekly))
			t.PeakDayName = s.PeakDayName
			t.PeakDayIdx = &idx
		}
		targets = append(targets, t.compute(safetyDays))
	}
	return targets
}

func (t Target) compute(safetyDays int) Target {
	t.SafetyStockQty = math.Round(t.AvgDaily * float64(safetyDays))

	base := math.Max(t.AvgWeekly, float64(t.SalesRequest))
	t.GrossRequirement = base + t.SafetyStockQty
	t.FinalTarget = math.Max(0, t.GrossRequirement-t.StockOnHand)
	t.EstimationStock = t.FinalTarget + t.StockOnHand

	batches := math.Ceil(t.FinalTarget / t.QtyPerBatch)
	if math.IsNaN(batches) || math.IsInf(batches, 0) {
		batches = 0
	}
	t.BatchesNeeded = int(batches)

	t.IsOverridden = float64(t.SalesRequest) > t.AvgWeekly

	switch {
	case t.AvgDaily > 0:
		t.DaysToOut = Days(t.StockOnHand / t.AvgDaily)
	case t.StockOnHand > 0:
		t.DaysToOut = Days(math.Inf(1))
	default:
		t.DaysToOut = 0
	}
	return t
}

// Handoff is what the planner passes to the schedule builder: batch targets
// and the recommended production weekday per SKU.
type Handoff struct {
	Targets         map[string]int `json:"targets"`
	Recommendations map[string]int `json:"recommendations"`
}

func NewHandoff(targets []Target) Handoff {
	h := Handoff{
		Targets:         make(map[string]int, len(targets)),
		Recommendations: make(map[string]int, len(targets)),
	}
	for _, t := range targets {
		h.Targets[t.SKUID] = t.BatchesNeeded
		if t.PeakDayIdx != nil {
			h.Recommendations[t.SKUID] = *t.PeakDayIdx
		}
	}
	return h
}

// Requests keeps manual sales requests between planning refreshes.
type Requests map[string]int

// Set stores the integer prefix of value, or 0 when it has none.
func (r Requests) Set(sku, value string) {
	r[sku] = ingest.Int(value)
}

// Retain drops requests for SKUs no longer among products.
func (r Requests) Retain(products []domain.FinishGood) {
	keep := make(map[string]bool, len(products))
	for _, p := range domain.ActiveGoods(products) {
		keep[p.ID] = true
	}
	for sku := range r {
		if !keep[sku] {
			delete(r, sku)
		}
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
