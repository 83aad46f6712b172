// Package memory is an in-process Store used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu   sync.RWMutex
	snap domain.Snapshot
}

var _ repository.Store = (*Store)(nil)

// New creates a store holding a copy of snap.
func New(snap domain.Snapshot) *Store {
	return &Store{snap: clone(snap)}
}

// LoadFile reads a snapshot saved as JSON in the store's wire format. Nested
// fields may be JSON text, as exported from the spreadsheet.
func LoadFile(path string, loc *time.Location) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}
	return New(ingest.NewDecoder(loc).Snapshot(payload)), nil
}

// SaveFile writes the held snapshot as JSON. LoadFile reads it back.
func (s *Store) SaveFile(path string) error {
	s.mu.RLock()
	raw, err := json.MarshalIndent(s.snap, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

func (s *Store) Snapshot(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.snap), nil
}

func (s *Store) SyncRawMaterials(_ context.Context, materials []domain.RawMaterial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.RawMaterials = append([]domain.RawMaterial{}, materials...)
	return nil
}

func (s *Store) SyncFinishGoods(_ context.Context, goods []domain.FinishGood) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FinishGoods = append([]domain.FinishGood{}, goods...)
	return nil
}

func (s *Store) SyncSales(_ context.Context, sales []domain.SalesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Sales = append([]domain.SalesRecord{}, sales...)
	return nil
}

func (s *Store) SaveSchedule(_ context.Context, sched domain.SavedSchedule) (string, error) {
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.ProductionHistory = append(s.snap.ProductionHistory, sched)
	return sched.ID, nil
}

func (s *Store) UpdateSchedule(_ context.Context, sched domain.SavedSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.ProductionHistory {
		if s.snap.ProductionHistory[i].ID == sched.ID {
			s.snap.ProductionHistory[i] = sched
			return nil
		}
	}
	return fmt.Errorf("schedule %s: %w", sched.ID, repository.ErrNotFound)
}

func (s *Store) SaveRMRequirement(_ context.Context, r domain.SavedRMRequirement) (string, error) {
	r.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.RMHistory = append(s.snap.RMHistory, r)
	return r.ID, nil
}

func (s *Store) CreateRequestOrder(_ context.Context, o domain.RequestOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.RequestOrders = append(s.snap.RequestOrders, o)
	return nil
}

func (s *Store) UpdateRequestOrder(_ context.Context, o domain.RequestOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.RequestOrders {
		cur := &s.snap.RequestOrders[i]
		if cur.ID == o.ID {
			cur.Items = o.Items
			cur.Status = o.Status
			cur.Deadline = o.Deadline
			return nil
		}
	}
	return fmt.Errorf("request order %s: %w", o.ID, repository.ErrNotFound)
}

// clone deep-copies through JSON so callers never share nested maps.
func clone(snap domain.Snapshot) domain.Snapshot {
	raw, err := json.Marshal(snap)
	if err != nil {
		return snap
	}
	var out domain.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return snap
	}
	return out
}
