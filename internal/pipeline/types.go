package pipeline

import (
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/demand"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/requirement"
)

// Stage is one step of a planning run. Stages read what earlier stages put
// on the Run and add their own output.
type Stage interface {
	// Name identifies the stage in errors and status reports
	Name() string

	// Apply computes the stage output
	Apply(run *Run)
}

// Input is everything a planning run reads.
type Input struct {
	Snapshot domain.Snapshot

	// Sales analysis window, YYYY-MM-DD inclusive
	StartDate string
	EndDate   string

	// ScheduleStart is the first day of the production week.
	ScheduleStart string

	// Requests are manual weekly sales requests per SKU.
	Requests map[string]int

	// Grid is the edited schedule. Nil means an untouched, all-zero grid.
	Grid map[string][]int

	// SafetyOverrides are per-material reorder safety days.
	SafetyOverrides reorder.Settings
}

// Run carries the intermediate and final results of one execution.
type Run struct {
	Input Input `json:"-"`

	Stats       []analytics.SkuDemandStats `json:"stats"`
	Targets     []demand.Target            `json:"targets"`
	Handoff     demand.Handoff             `json:"handoff"`
	Grid        map[string][]int           `json:"grid"`
	Requirement requirement.Requirement    `json:"requirement"`
	Demands     []domain.MaterialDemand    `json:"demands"`
	Reorder     []reorder.Analysis         `json:"reorder"`
	Summary     reorder.Summary            `json:"summary"`
}

// Config holds the planning policy.
type Config struct {
	SafetyDays    int
	ROPSafetyDays int
	Location      *time.Location
}

// DefaultConfig returns the standard planning policy.
func DefaultConfig() Config {
	return Config{
		SafetyDays:    demand.DefaultSafetyDays,
		ROPSafetyDays: reorder.DefaultSafetyDays,
		Location:      time.Local,
	}
}
