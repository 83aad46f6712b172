package pipeline

import (
	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/demand"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/requirement"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/schedule"
)

type salesStage struct {
	engine *analytics.Engine
}

func (s salesStage) Name() string { return "sales-analysis" }

func (s salesStage) Apply(run *Run) {
	in := run.Input
	run.Stats = s.engine.Analyze(in.Snapshot.Sales, in.Snapshot.FinishGoods, in.StartDate, in.EndDate)
}

type demandStage struct {
	safetyDays int
}

func (s demandStage) Name() string { return "demand-planning" }

func (s demandStage) Apply(run *Run) {
	run.Targets = demand.Plan(run.Stats, run.Input.Snapshot.FinishGoods, s.safetyDays, run.Input.Requests)
	run.Handoff = demand.NewHandoff(run.Targets)
}

type scheduleStage struct{}

func (scheduleStage) Name() string { return "schedule" }

func (scheduleStage) Apply(run *Run) {
	in := run.Input
	sess := schedule.New(in.Snapshot.FinishGoods, in.ScheduleStart, run.Handoff.Targets, run.Handoff.Recommendations)
	if in.Grid != nil {
		sess = schedule.Load(domain.SavedSchedule{
			StartDate: in.ScheduleStart,
			Data:      in.Grid,
			Targets:   run.Handoff.Targets,
		}, in.Snapshot.FinishGoods)
	}
	run.Grid = sess.Grid()
}

type requirementStage struct{}

func (requirementStage) Name() string { return "material-requirement" }

func (requirementStage) Apply(run *Run) {
	snap := run.Input.Snapshot
	run.Requirement = requirement.Compute(run.Grid, snap.FinishGoods, snap.RawMaterials)

	// An empty requirement is a normal outcome of an empty schedule.
	demands, err := run.Requirement.ToDemands(snap.RawMaterials)
	if err != nil {
		demands = nil
	}
	run.Demands = demands
}

type reorderStage struct {
	safetyDays int
}

func (s reorderStage) Name() string { return "reorder-point" }

func (s reorderStage) Apply(run *Run) {
	calc := reorder.NewCalculator(s.safetyDays, run.Input.SafetyOverrides.Clone())
	run.Reorder = calc.Analyze(run.Demands)
	run.Summary = reorder.Summarize(run.Reorder)
}
