// Package pipeline runs the planning stages end to end over one snapshot.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
)

// Orchestrator runs the planning stages in order over one input.
type Orchestrator struct {
	cfg    Config
	stages []Stage
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Orchestrator{
		cfg: cfg,
		stages: []Stage{
			salesStage{engine: analytics.NewEngine(cfg.Location)},
			demandStage{safetyDays: cfg.SafetyDays},
			scheduleStage{},
			requirementStage{},
			reorderStage{safetyDays: cfg.ROPSafetyDays},
		},
	}
}

// Stages lists stage names in execution order.
func (o *Orchestrator) Stages() []string {
	names := make([]string, 0, len(o.stages))
	for _, s := range o.stages {
		names = append(names, s.Name())
	}
	return names
}

// Run executes every stage. Stages never fail on bad data; the only error is
// cancellation between stages.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Run, error) {
	run := &Run{Input: in}
	for _, s := range o.stages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("planning stopped before %s: %w", s.Name(), err)
		}
		s.Apply(run)
	}
	return run, nil
}
