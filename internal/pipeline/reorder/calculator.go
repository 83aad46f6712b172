// Package reorder computes demand-driven reorder points for materials.
package reorder

import (
	"math"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
)

// Calculator applies the reorder formula with a default safety cover and
// optional per-material overrides.
type Calculator struct {
	defaultSafetyDays int
	settings          Settings
}

// NewCalculator creates a calculator. A negative default falls back to
// DefaultSafetyDays.
func NewCalculator(defaultSafetyDays int, settings Settings) *Calculator {
	if defaultSafetyDays < 0 {
		defaultSafetyDays = DefaultSafetyDays
	}
	if settings == nil {
		settings = Settings{}
	}
	return &Calculator{defaultSafetyDays: defaultSafetyDays, settings: settings}
}

// SafetyDays returns the cover used for material id.
func (c *Calculator) SafetyDays(id string) int {
	if d, ok := c.settings[id]; ok {
		return d
	}
	return c.defaultSafetyDays
}

// Override sets the safety cover of one material from user input. Values
// without an integer prefix count as 0; negative values are clamped to 0.
func (c *Calculator) Override(id, value string) {
	d := ingest.Int(value)
	if d < 0 {
		d = 0
	}
	c.settings[id] = d
}

// Settings returns the overrides recorded so far.
func (c *Calculator) Settings() Settings {
	return c.settings.Clone()
}

// Calculate computes the reorder metrics for one material demand.
func (c *Calculator) Calculate(d domain.MaterialDemand) Analysis {
	a := Analysis{MaterialDemand: d, SafetyDays: c.SafetyDays(d.ID)}

	weekly := finite(d.UsageAmount)
	stock := finite(d.CurrentStock)

	// 1. Daily usage from the weekly requirement
	a.DailyUsage = weekly / 7

	// 2. Demand while waiting for delivery
	a.LeadTimeDemand = a.DailyUsage * finite(d.LeadTime)

	// 3. Safety stock cover
	a.SafetyStockDemand = a.DailyUsage * float64(a.SafetyDays)

	// 4. Reorder point = weekly requirement + lead time demand + safety stock
	a.ROPThreshold = weekly + a.LeadTimeDemand + a.SafetyStockDemand

	// 5. Reorder flag
	a.IsReorder = stock < a.ROPThreshold

	// 6. Health as percentage of the reorder point
	if a.ROPThreshold > 0 {
		a.Health = stock / a.ROPThreshold * 100
	} else {
		a.Health = 100
	}

	// 7. Shortage in usage units
	if a.IsReorder {
		a.Shortage = math.Ceil(a.ROPThreshold - stock)
	}

	return a
}

// Analyze computes one row per demand, in input order.
func (c *Calculator) Analyze(demands []domain.MaterialDemand) []Analysis {
	rows := make([]Analysis, 0, len(demands))
	for _, d := range demands {
		rows = append(rows, c.Calculate(d))
	}
	return rows
}

// Flagged keeps only the rows that need reordering.
func Flagged(rows []Analysis) []Analysis {
	out := make([]Analysis, 0, len(rows))
	for _, r := range rows {
		if r.IsReorder {
			out = append(out, r)
		}
	}
	return out
}

// Summarize counts reorder and safe rows.
func Summarize(rows []Analysis) Summary {
	s := Summary{Materials: len(rows)}
	for _, r := range rows {
		if r.IsReorder {
			s.Reorder++
		} else {
			s.Safe++
		}
	}
	return s
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
