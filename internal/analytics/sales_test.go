package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailySales(sku string, start time.Time, qty ...float64) []domain.SalesRecord {
	out := make([]domain.SalesRecord, 0, len(qty))
	for i, q := range qty {
		out = append(out, domain.SalesRecord{
			ID:           fmt.Sprintf("%s-%d", sku, i),
			SKUID:        sku,
			Date:         start.AddDate(0, 0, i).Format(dateLayout),
			QuantitySold: q,
		})
	}
	return out
}

func TestNewWindow(t *testing.T) {
	w := NewWindow("2024-03-01", "2024-03-07")

	assert.Equal(t, 7, w.Days)
	require.Len(t, w.Dates, 7)
	assert.Equal(t, "2024-03-01", w.Dates[0])
	assert.Equal(t, "2024-03-07", w.Dates[6])
	for i := 0; i < 7; i++ {
		assert.Equal(t, 1, w.DayCounts[i])
	}

	reversed := NewWindow("2024-03-07", "2024-03-01")
	assert.Equal(t, 7, reversed.Days)
	assert.Empty(t, reversed.Dates)

	bad := NewWindow("yesterday", "2024-03-01")
	assert.Equal(t, 1, bad.Days)
}

func TestAnalyze_PeakWeeklyPicksBestWindow(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		qty  []float64
		want float64
	}{
		// 5,5,5,5,20,20,20
		{"heaviest week is the last", []float64{5, 5, 5, 5, 5, 5, 5, 20, 20, 20}, 80},
		// first and last full weeks both sum to 39
		{"heaviest week in the middle", []float64{1, 1, 1, 9, 9, 9, 9, 9, 9, 9, 1, 1, 1}, 63},
		{"heaviest week is the first", []float64{9, 9, 9, 9, 9, 9, 9, 1, 1, 1}, 63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales := dailySales("FG001", start, tt.qty...)
			end := start.AddDate(0, 0, len(tt.qty)-1).Format(dateLayout)

			stats := NewEngine(time.UTC).Analyze(sales, []domain.FinishGood{{ID: "FG001", QtyPerBatch: 40}}, "2024-03-01", end)

			require.Len(t, stats, 1)
			assert.Equal(t, tt.want, stats[0].PeakWeekly)
		})
	}
}

func TestAnalyze_Averages(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sales := dailySales("FG001", start, 5, 5, 5, 5, 5, 5, 5, 20, 20, 20)

	stats := NewEngine(time.UTC).Analyze(sales, []domain.FinishGood{{ID: "FG001", QtyPerBatch: 40}}, "2024-03-01", "2024-03-10")

	require.Len(t, stats, 1)
	assert.Equal(t, 100.0, stats[0].TotalSold)
	assert.InDelta(t, 10, stats[0].AverageDaily, 1e-9)
	assert.InDelta(t, 70, stats[0].AverageWeekly, 1e-9)
}

func TestAnalyze_ShortWindowFallsBackToTotal(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sales := dailySales("FG001", start, 3, 4, 5)

	stats := NewEngine(time.UTC).Analyze(sales, []domain.FinishGood{{ID: "FG001"}}, "2024-03-01", "2024-03-03")

	require.Len(t, stats, 1)
	assert.Equal(t, 12.0, stats[0].PeakWeekly)
	assert.InDelta(t, 4, stats[0].AverageDaily, 1e-9)
}

func TestAnalyze_SumsSameDayRecordsAndFiltersRange(t *testing.T) {
	sales := []domain.SalesRecord{
		{SKUID: "FG001", Date: "2024-03-04", QuantitySold: 10},
		{SKUID: "FG001", Date: "2024-03-04", QuantitySold: 5},
		{SKUID: "FG001", Date: "2024-02-28", QuantitySold: 100},
		{SKUID: "FG002", Date: "2024-03-05", QuantitySold: 7},
	}

	stats := NewEngine(time.UTC).Analyze(sales, []domain.FinishGood{{ID: "FG001"}, {ID: "FG003", Name: "Bakso Urat"}}, "2024-03-04", "2024-03-10")

	require.Len(t, stats, 2)
	assert.Equal(t, 15.0, stats[0].TotalSold)
	// 2024-03-04 is a Monday.
	assert.Equal(t, 1, stats[0].PeakDayIdx)
	assert.Equal(t, "Senin", stats[0].PeakDayName)

	assert.Equal(t, "FG003", stats[1].ID)
	assert.Zero(t, stats[1].TotalSold)
	assert.Equal(t, -1, stats[1].PeakDayIdx)
	assert.Equal(t, "-", stats[1].PeakDayName)
}

func TestAnalyze_PeakDayTieKeepsFirstWeekday(t *testing.T) {
	// Sunday 2024-03-03 and Tuesday 2024-03-05 sell the same amount.
	sales := []domain.SalesRecord{
		{SKUID: "FG001", Date: "2024-03-05", QuantitySold: 8},
		{SKUID: "FG001", Date: "2024-03-03", QuantitySold: 8},
	}

	stats := NewEngine(time.UTC).Analyze(sales, []domain.FinishGood{{ID: "FG001"}}, "2024-03-03", "2024-03-09")

	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[0].PeakDayIdx)
	assert.Equal(t, "Minggu", stats[0].PeakDayName)
}

func TestAnalyze_NormalizesTimestampsToLocalDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	sales := []domain.SalesRecord{{SKUID: "FG001", Date: "2024-03-03T18:00:00Z", QuantitySold: 9}}

	stats := NewEngine(loc).Analyze(sales, []domain.FinishGood{{ID: "FG001"}}, "2024-03-04", "2024-03-04")

	require.Len(t, stats, 1)
	assert.Equal(t, 9.0, stats[0].TotalSold)
}

func TestAnalyze_EmptyInputs(t *testing.T) {
	assert.Empty(t, Analyze(nil, nil, "2024-03-01", "2024-03-31"))

	stats := Analyze(nil, []domain.FinishGood{{ID: "FG001"}}, "2024-03-01", "2024-03-31")
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].PeakWeekly)
	assert.Equal(t, -1, stats[0].PeakDayIdx)
}
