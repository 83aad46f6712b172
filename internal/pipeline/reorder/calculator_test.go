package reorder

import (
	"testing"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_Calculate(t *testing.T) {
	c := NewCalculator(DefaultSafetyDays, nil)

	tests := []struct {
		name        string
		stock       float64
		wantReorder bool
		wantShort   float64
	}{
		{"below threshold", 100, true, 72},
		{"just below threshold", 171, true, 1},
		{"above threshold", 172, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := c.Calculate(domain.MaterialDemand{ID: "RM001", UsageAmount: 100, LeadTime: 3, CurrentStock: tt.stock})

			assert.InDelta(t, 100.0/7, a.DailyUsage, 1e-9)
			assert.InDelta(t, 300.0/7, a.LeadTimeDemand, 1e-9)
			assert.InDelta(t, 200.0/7, a.SafetyStockDemand, 1e-9)
			assert.InDelta(t, 171.4285714, a.ROPThreshold, 1e-6)
			assert.Equal(t, tt.wantReorder, a.IsReorder)
			assert.Equal(t, tt.wantShort, a.Shortage)
			assert.InDelta(t, tt.stock/a.ROPThreshold*100, a.Health, 1e-9)
		})
	}
}

func TestCalculator_ZeroDemandIsHealthy(t *testing.T) {
	a := NewCalculator(DefaultSafetyDays, nil).Calculate(domain.MaterialDemand{ID: "RM002"})

	assert.Zero(t, a.ROPThreshold)
	assert.False(t, a.IsReorder)
	assert.Equal(t, 100.0, a.Health)
	assert.Zero(t, a.Shortage)
}

func TestCalculator_Overrides(t *testing.T) {
	c := NewCalculator(DefaultSafetyDays, Settings{"RM001": 0})
	c.Override("RM002", "5")
	c.Override("RM003", "-3")
	c.Override("RM004", "lots")

	assert.Equal(t, 0, c.SafetyDays("RM001"))
	assert.Equal(t, 5, c.SafetyDays("RM002"))
	assert.Equal(t, 0, c.SafetyDays("RM003"))
	assert.Equal(t, 0, c.SafetyDays("RM004"))
	assert.Equal(t, DefaultSafetyDays, c.SafetyDays("RM999"))

	a := c.Calculate(domain.MaterialDemand{ID: "RM001", UsageAmount: 70, CurrentStock: 70})
	assert.Equal(t, 70.0, a.ROPThreshold)
	assert.False(t, a.IsReorder)

	assert.Len(t, c.Settings(), 4)
}

func TestAnalyzeFlaggedSummarize(t *testing.T) {
	c := NewCalculator(DefaultSafetyDays, nil)

	rows := c.Analyze([]domain.MaterialDemand{
		{ID: "RM001", UsageAmount: 700, CurrentStock: 0},
		{ID: "RM002", UsageAmount: 7, CurrentStock: 1000},
	})

	require.Len(t, rows, 2)
	flagged := Flagged(rows)
	require.Len(t, flagged, 1)
	assert.Equal(t, "RM001", flagged[0].ID)
	assert.Equal(t, Summary{Materials: 2, Reorder: 1, Safe: 1}, Summarize(rows))

	assert.Empty(t, c.Analyze(nil))
	assert.Empty(t, Flagged(nil))
}
