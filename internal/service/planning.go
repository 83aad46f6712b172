package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/analytics"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/cache"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/demand"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/requirement"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/schedule"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// TargetsResult is the outcome of a sales analysis and target planning pass.
type TargetsResult struct {
	StartDate string                     `json:"startDate"`
	EndDate   string                     `json:"endDate"`
	Stats     []analytics.SkuDemandStats `json:"stats"`
	Targets   []demand.Target            `json:"targets"`
	Handoff   demand.Handoff             `json:"handoff"`
}

// ScheduleView is the open schedule as shown to the planner.
type ScheduleView struct {
	ID           string         `json:"id,omitempty"`
	StartDate    string         `json:"startDate"`
	Editing      bool           `json:"editing"`
	Dates        []schedule.Day `json:"dates"`
	Rows         []schedule.Row `json:"rows"`
	TotalBatches int            `json:"totalBatches"`
}

// ReorderView is the reorder table with its counters.
type ReorderView struct {
	Rows     []reorder.Analysis `json:"rows"`
	Summary  reorder.Summary    `json:"summary"`
	Settings reorder.Settings   `json:"safetyDays"`
}

// PlanningService drives one planner's session: targets, the open schedule,
// the requirement and the reorder table. Session state lives in memory only.
type PlanningService struct {
	store        repository.Store
	sync         *SyncService
	statsCache   cache.AnalyticsCache
	mirror       mirror
	cfg          pipeline.Config
	orchestrator *pipeline.Orchestrator
	engine       *analytics.Engine
	now          func() time.Time

	// saveMu serializes SaveSchedule so a new session is inserted once.
	saveMu sync.Mutex

	mu       sync.Mutex
	requests demand.Requests
	session  *schedule.Session
	rop      *reorder.Calculator
	demands  []domain.MaterialDemand
}

func NewPlanningService(store repository.Store, syncSvc *SyncService, statsCache cache.AnalyticsCache, archive repository.Archive, cfg pipeline.Config) *PlanningService {
	if statsCache == nil {
		statsCache = cache.NewNoopAnalyticsCache()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &PlanningService{
		store:        store,
		sync:         syncSvc,
		statsCache:   statsCache,
		mirror:       mirror{archive: archive},
		cfg:          cfg,
		orchestrator: pipeline.NewOrchestrator(cfg),
		engine:       analytics.NewEngine(cfg.Location),
		now:          time.Now,
		requests:     demand.Requests{},
		rop:          reorder.NewCalculator(cfg.ROPSafetyDays, nil),
	}
}

// Analyze computes sales statistics and production targets for the window.
// Manual requests survive between calls for SKUs that are still active.
func (s *PlanningService) Analyze(ctx context.Context, start, end string) (*TargetsResult, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	stats := s.analyze(ctx, snap, start, end)

	s.mu.Lock()
	s.requests.Retain(snap.FinishGoods)
	targets := demand.Plan(stats, snap.FinishGoods, s.cfg.SafetyDays, s.requests)
	s.mu.Unlock()

	return &TargetsResult{
		StartDate: start,
		EndDate:   end,
		Stats:     stats,
		Targets:   targets,
		Handoff:   demand.NewHandoff(targets),
	}, nil
}

func (s *PlanningService) analyze(ctx context.Context, snap domain.Snapshot, start, end string) []analytics.SkuDemandStats {
	key := cache.NewAnalyticsKey(start, end, snap.Sales, snap.FinishGoods)

	if stats, ok, err := s.statsCache.Get(ctx, key); err == nil && ok {
		return stats
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get analytics failed")
	}

	stats := s.engine.Analyze(snap.Sales, snap.FinishGoods, start, end)
	if err := s.statsCache.Set(ctx, key, stats); err != nil {
		log.Warn().Err(err).Msg("planning: cache set analytics failed")
	}
	return stats
}

// SetRequest records a manual weekly sales request for sku.
func (s *PlanningService) SetRequest(sku, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests.Set(sku, value)
}

func (s *PlanningService) Requests() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.requests))
	for k, v := range s.requests {
		out[k] = v
	}
	return out
}

// NewSchedule opens an empty schedule for the week starting at startDate,
// carrying the hand-off targets and recommended days alongside the grid.
func (s *PlanningService) NewSchedule(ctx context.Context, startDate string, handoff demand.Handoff) (*ScheduleView, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	sess := schedule.New(snap.FinishGoods, startDate, handoff.Targets, handoff.Recommendations)
	if err := sess.SetStartDate(startDate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	return s.view(), nil
}

// EditSchedule opens a saved schedule. Saving it afterwards updates the
// same record.
func (s *PlanningService) EditSchedule(ctx context.Context, id string) (*ScheduleView, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for _, saved := range snap.ProductionHistory {
		if saved.ID != id {
			continue
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.session = schedule.Load(saved, snap.FinishGoods)
		return s.view(), nil
	}
	return nil, fmt.Errorf("schedule %s: %w", id, repository.ErrNotFound)
}

// Schedule returns the open schedule refreshed against the latest products.
func (s *PlanningService) Schedule(ctx context.Context) (*ScheduleView, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	s.session.Refresh(snap.FinishGoods)
	return s.view(), nil
}

// SetCell stores the integer prefix of value as the batches for sku on day.
func (s *PlanningService) SetCell(sku string, day int, value string) (*ScheduleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	if err := s.session.Set(sku, day, value); err != nil {
		return nil, err
	}
	return s.view(), nil
}

func (s *PlanningService) SetScheduleStart(date string) (*ScheduleView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, ErrNoSession
	}
	if err := s.session.SetStartDate(date); err != nil {
		return nil, err
	}
	return s.view(), nil
}

// SaveSchedule appends the open schedule, or updates it when it was opened
// from history or saved before.
func (s *PlanningService) SaveSchedule(ctx context.Context) (domain.SavedSchedule, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	session := s.session
	if session == nil {
		s.mu.Unlock()
		return domain.SavedSchedule{}, ErrNoSession
	}
	record := session.Record(s.now())
	s.mu.Unlock()

	if record.ID == "" {
		id, err := s.store.SaveSchedule(ctx, record)
		if err != nil {
			return domain.SavedSchedule{}, fmt.Errorf("failed to save schedule: %w", err)
		}
		record.ID = id
	} else if err := s.store.UpdateSchedule(ctx, record); err != nil {
		return domain.SavedSchedule{}, fmt.Errorf("failed to update schedule %s: %w", record.ID, err)
	}

	s.mu.Lock()
	session.MarkSaved(record.ID)
	s.mu.Unlock()

	log.Info().
		Str("schedule_id", record.ID).
		Int("total_batches", record.TotalBatches).
		Msg("planning: schedule saved")

	s.mirror.schedule(ctx, record)
	s.sync.AfterWrite(ctx)
	return record, nil
}

// Requirement computes material needs from the open schedule.
func (s *PlanningService) Requirement(ctx context.Context) (requirement.Requirement, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return requirement.Requirement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return requirement.Requirement{}, ErrNoSession
	}
	return requirement.Compute(s.session.Grid(), snap.FinishGoods, snap.RawMaterials), nil
}

// ArchiveRequirement stores the current requirement in the RM history.
func (s *PlanningService) ArchiveRequirement(ctx context.Context) (domain.SavedRMRequirement, error) {
	req, err := s.Requirement(ctx)
	if err != nil {
		return domain.SavedRMRequirement{}, err
	}
	if len(req.Global) == 0 {
		return domain.SavedRMRequirement{}, requirement.ErrNoRequirements
	}

	s.mu.Lock()
	startDate := s.session.StartDate
	s.mu.Unlock()

	record := req.Archive(startDate, s.now())
	id, err := s.store.SaveRMRequirement(ctx, record)
	if err != nil {
		return domain.SavedRMRequirement{}, fmt.Errorf("failed to archive requirement: %w", err)
	}
	record.ID = id

	s.mirror.requirement(ctx, record)
	s.sync.AfterWrite(ctx)
	return record, nil
}

// SyncToReorder hands the current requirement to the reorder table.
func (s *PlanningService) SyncToReorder(ctx context.Context) (*ReorderView, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.Requirement(ctx)
	if err != nil {
		return nil, err
	}

	demands, err := req.ToDemands(snap.RawMaterials)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.demands = demands
	return s.reorderView(), nil
}

// Reorder returns the reorder table for the last synced requirement.
func (s *PlanningService) Reorder() (*ReorderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demands == nil {
		return nil, ErrNoDemand
	}
	return s.reorderView(), nil
}

// SetSafetyDays overrides the reorder safety days of one material for the
// rest of the session.
func (s *PlanningService) SetSafetyDays(materialID, value string) *ReorderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rop.Override(materialID, value)
	return s.reorderView()
}

// ReorderRows returns the analysis rows of the reorder table.
func (s *PlanningService) ReorderRows() ([]reorder.Analysis, error) {
	view, err := s.Reorder()
	if err != nil {
		return nil, err
	}
	return view.Rows, nil
}

// Run executes the whole planning pipeline on the current snapshot. Missing
// safety day overrides fall back to the session's.
func (s *PlanningService) Run(ctx context.Context, in pipeline.Input) (*pipeline.Run, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	in.Snapshot = snap

	if in.SafetyOverrides == nil {
		s.mu.Lock()
		in.SafetyOverrides = s.rop.Settings()
		s.mu.Unlock()
	}

	return s.orchestrator.Run(ctx, in)
}

func (s *PlanningService) view() *ScheduleView {
	grid := s.session.Grid()
	return &ScheduleView{
		ID:           s.session.ID,
		StartDate:    s.session.StartDate,
		Editing:      s.session.Editing(),
		Dates:        s.session.Dates(),
		Rows:         s.session.Rows(),
		TotalBatches: schedule.TotalBatches(grid),
	}
}

func (s *PlanningService) reorderView() *ReorderView {
	rows := s.rop.Analyze(s.demands)
	return &ReorderView{
		Rows:     rows,
		Summary:  reorder.Summarize(rows),
		Settings: s.rop.Settings(),
	}
}
