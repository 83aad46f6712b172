package reorder

import "github.com/andresuchdata/ppic-planner/backend-go/internal/domain"

// DefaultSafetyDays is the safety cover applied to materials without an
// override.
const DefaultSafetyDays = 2

// Analysis is the reorder decision for one material.
type Analysis struct {
	domain.MaterialDemand

	SafetyDays        int     `json:"safetyDays"`
	DailyUsage        float64 `json:"dailyUsage"`
	LeadTimeDemand    float64 `json:"leadTimeDemand"`
	SafetyStockDemand float64 `json:"safetyStockDemand"`
	ROPThreshold      float64 `json:"ropThreshold"`
	IsReorder         bool    `json:"isReorder"`
	Health            float64 `json:"health"`
	Shortage          float64 `json:"shortage"`
}

// Summary counts the rows of one analysis pass.
type Summary struct {
	Materials int `json:"materials"`
	Reorder   int `json:"reorder"`
	Safe      int `json:"safe"`
}

// Settings holds per-material safety day overrides for a planning session.
// They are never written to the material master.
type Settings map[string]int

// Clone copies s. A nil receiver gives an empty set.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
