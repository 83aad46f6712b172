package analytics

import (
	"math"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
)

const dateLayout = "2006-01-02"

// SkuDemandStats holds demand statistics for one product over an analysis window.
type SkuDemandStats struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TotalSold     float64 `json:"totalSold"`
	AverageDaily  float64 `json:"averageDaily"`
	AverageWeekly float64 `json:"averageWeekly"`
	PeakWeekly    float64 `json:"peakWeekly"`
	PeakDayIdx    int     `json:"peakDayIdx"`
	PeakDayName   string  `json:"peakDayName"`
	QtyPerBatch   float64 `json:"qtyPerBatch"`
}

// Window is an inclusive range of calendar days.
type Window struct {
	Start string
	End   string
	// Days is the inclusive calendar day count between Start and End.
	Days int
	// Dates lists every day from Start through End in order.
	Dates []string
	// DayCounts counts occurrences of each weekday within Dates.
	DayCounts [7]int
}

// NewWindow builds the calendar for [start, end]. Unparseable bounds give an
// empty window with one calendar day.
func NewWindow(start, end string) Window {
	w := Window{Start: start, End: end, Days: 1}

	s, errS := time.Parse(dateLayout, start)
	e, errE := time.Parse(dateLayout, end)
	if errS != nil || errE != nil {
		return w
	}

	diff := e.Sub(s)
	if diff < 0 {
		diff = -diff
	}
	w.Days = int(math.Ceil(diff.Hours()/24)) + 1

	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		w.Dates = append(w.Dates, d.Format(dateLayout))
		w.DayCounts[d.Weekday()]++
	}
	return w
}

// Contains reports whether the calendar day date falls inside the window.
func (w Window) Contains(date string) bool {
	return date != "" && date >= w.Start && date <= w.End
}

// Engine computes sales statistics. Record dates are normalized to calendar
// days in the engine's location.
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{loc: loc}
}

// Analyze returns one entry per product, in product order, including products
// without sales in the window.
func (e *Engine) Analyze(records []domain.SalesRecord, products []domain.FinishGood, start, end string) []SkuDemandStats {
	w := NewWindow(start, end)
	daily := e.dailyTotals(records, w)

	results := make([]SkuDemandStats, 0, len(products))
	for _, p := range products {
		results = append(results, w.stats(p, daily[p.ID]))
	}
	return results
}

// Analyze runs the engine in the local time zone.
func Analyze(records []domain.SalesRecord, products []domain.FinishGood, start, end string) []SkuDemandStats {
	return NewEngine(time.Local).Analyze(records, products, start, end)
}

// dailyTotals sums quantities per SKU and calendar day within w.
func (e *Engine) dailyTotals(records []domain.SalesRecord, w Window) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, r := range records {
		day := ingest.Date(r.Date, e.loc)
		if !w.Contains(day) {
			continue
		}
		qty := r.QuantitySold
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			qty = 0
		}
		if out[r.SKUID] == nil {
			out[r.SKUID] = make(map[string]float64)
		}
		out[r.SKUID][day] += qty
	}
	return out
}

func (w Window) stats(p domain.FinishGood, daily map[string]float64) SkuDemandStats {
	var total float64
	for _, q := range daily {
		total += q
	}

	avgDaily := total / float64(w.Days)

	st := SkuDemandStats{
		ID:            p.ID,
		Name:          p.Name,
		TotalSold:     total,
		AverageDaily:  avgDaily,
		AverageWeekly: avgDaily * 7,
		PeakWeekly:    w.peakWeekly(daily, total),
		PeakDayIdx:    -1,
		PeakDayName:   domain.DayName(-1),
		QtyPerBatch:   p.QtyPerBatch,
	}

	if total > 0 {
		st.PeakDayIdx = w.peakDay(daily)
		st.PeakDayName = domain.DayName(st.PeakDayIdx)
	}
	return st
}

// peakDay picks the weekday with the highest average daily total. Ties keep
// the lowest weekday index.
func (w Window) peakDay(daily map[string]float64) int {
	var sums [7]float64
	for _, d := range w.Dates {
		t, _ := time.Parse(dateLayout, d)
		sums[t.Weekday()] += daily[d]
	}

	peak, best := -1, -1.0
	for i := 0; i < 7; i++ {
		if w.DayCounts[i] == 0 {
			continue
		}
		if avg := sums[i] / float64(w.DayCounts[i]); avg > best {
			best = avg
			peak = i
		}
	}
	return peak
}

// peakWeekly is the largest total over any 7 consecutive days. Windows
// shorter than a week fall back to the whole total.
func (w Window) peakWeekly(daily map[string]float64, total float64) float64 {
	if len(w.Dates) < 7 {
		return total
	}

	var peak float64
	for i := 0; i+7 <= len(w.Dates); i++ {
		var sum float64
		for _, d := range w.Dates[i : i+7] {
			sum += daily[d]
		}
		if sum > peak {
			peak = sum
		}
	}
	return peak
}
