package service

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/cache"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

const defaultPollInterval = 30 * time.Second

// SyncState is the health of the link to the store.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
)

type SyncStatus struct {
	State        SyncState `json:"state"`
	LastError    string    `json:"lastError,omitempty"`
	LastSyncedAt time.Time `json:"lastSyncedAt"`
}

// SyncService keeps the latest store snapshot in memory. Planning reads the
// held copy, so a failing store degrades to stale data instead of errors.
type SyncService struct {
	store    repository.Store
	cache    cache.SnapshotCache
	interval time.Duration

	mu     sync.RWMutex
	snap   *domain.Snapshot
	status SyncStatus
}

func NewSyncService(store repository.Store, cacheImpl cache.SnapshotCache, interval time.Duration) *SyncService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSnapshotCache()
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &SyncService{
		store:    store,
		cache:    cacheImpl,
		interval: interval,
		status:   SyncStatus{State: SyncIdle},
	}
}

// Start polls the store until ctx is done. The first fetch tries the cache
// before the store.
func (s *SyncService) Start(ctx context.Context) {
	if snap, ok, err := s.cache.Get(ctx); err == nil && ok {
		s.set(snap)
	} else if err != nil {
		log.Warn().Err(err).Msg("sync: cache get snapshot failed")
	}

	if err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("sync: initial fetch failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("sync: poll failed")
			}
		}
	}
}

// Refresh fetches the whole snapshot from the store.
func (s *SyncService) Refresh(ctx context.Context) error {
	s.setState(SyncSyncing, "")

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		s.setState(SyncError, err.Error())
		return err
	}

	s.set(&snap)
	s.mu.Lock()
	s.status = SyncStatus{State: SyncIdle, LastSyncedAt: time.Now()}
	s.mu.Unlock()

	if err := s.cache.Set(ctx, &snap); err != nil {
		log.Warn().Err(err).Msg("sync: cache set snapshot failed")
	}

	log.Debug().
		Int("materials", len(snap.RawMaterials)).
		Int("products", len(snap.FinishGoods)).
		Int("sales", len(snap.Sales)).
		Msg("sync: snapshot refreshed")
	return nil
}

// AfterWrite drops the cached snapshot and re-reads the store.
func (s *SyncService) AfterWrite(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("sync: cache invalidate failed")
	}
	if err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("sync: refresh after write failed")
	}
}

// Snapshot returns the held snapshot, fetching it when none is held yet.
func (s *SyncService) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return *snap, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.snap, nil
}

func (s *SyncService) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *SyncService) set(snap *domain.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *SyncService) setState(state SyncState, lastErr string) {
	s.mu.Lock()
	s.status.State = state
	s.status.LastError = lastErr
	s.mu.Unlock()
}

// mirror forwards written artifacts to the optional archive database.
// Failures are logged and never fail the write.
type mirror struct {
	archive repository.Archive
}

func (m mirror) schedule(ctx context.Context, sched domain.SavedSchedule) {
	if m.archive == nil {
		return
	}
	if err := m.archive.ArchiveSchedule(ctx, sched); err != nil {
		log.Warn().Err(err).Str("schedule_id", sched.ID).Msg("archive: schedule mirror failed")
	}
}

func (m mirror) requirement(ctx context.Context, r domain.SavedRMRequirement) {
	if m.archive == nil {
		return
	}
	if err := m.archive.ArchiveRMRequirement(ctx, r); err != nil {
		log.Warn().Err(err).Str("requirement_id", r.ID).Msg("archive: requirement mirror failed")
	}
}

func (m mirror) order(ctx context.Context, o domain.RequestOrder) {
	if m.archive == nil {
		return
	}
	if err := m.archive.ArchiveRequestOrder(ctx, o); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("archive: order mirror failed")
	}
}
