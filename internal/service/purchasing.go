package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// OrderBook is the request order list with its counters.
type OrderBook struct {
	Orders []domain.RequestOrder `json:"orders"`
	Stats  purchasing.Stats      `json:"stats"`
}

// TrafficView is the goods movement page: active orders, delivery history
// and inventory value.
type TrafficView struct {
	Orders     []domain.RequestOrder      `json:"orders"`
	Deliveries []purchasing.DeliveryEntry `json:"deliveries"`
	Valuation  purchasing.Valuation       `json:"valuation"`
}

type PurchasingService struct {
	store  repository.Store
	sync   *SyncService
	mirror mirror
	desk   *purchasing.Desk
}

func NewPurchasingService(store repository.Store, syncSvc *SyncService, archive repository.Archive, desk *purchasing.Desk) *PurchasingService {
	return &PurchasingService{
		store:  store,
		sync:   syncSvc,
		mirror: mirror{archive: archive},
		desk:   desk,
	}
}

// CreateOrder drafts a request order from the flagged reorder rows.
func (s *PurchasingService) CreateOrder(ctx context.Context, rows []reorder.Analysis) (domain.RequestOrder, error) {
	o, err := s.desk.CreateOrder(rows)
	if err != nil {
		return domain.RequestOrder{}, err
	}

	if err := s.store.CreateRequestOrder(ctx, o); err != nil {
		return domain.RequestOrder{}, fmt.Errorf("failed to create request order: %w", err)
	}

	log.Info().Str("order_id", o.ID).Int("items", len(o.Items)).Msg("purchasing: request order drafted")
	s.mirror.order(ctx, o)
	s.sync.AfterWrite(ctx)
	return o, nil
}

func (s *PurchasingService) Get(ctx context.Context, id string) (domain.RequestOrder, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return domain.RequestOrder{}, err
	}
	return purchasing.Find(snap.RequestOrders, id)
}

// Orders lists request orders dated in [start, end], newest first as stored.
func (s *PurchasingService) Orders(ctx context.Context, start, end string) (*OrderBook, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	orders := purchasing.FilterByDate(snap.RequestOrders, start, end)
	return &OrderBook{Orders: orders, Stats: purchasing.Summarize(snap.RequestOrders)}, nil
}

// Finalize sends a draft order with the given deadline.
func (s *PurchasingService) Finalize(ctx context.Context, id, deadline string) (domain.RequestOrder, error) {
	return s.apply(ctx, id, func(o domain.RequestOrder) (domain.RequestOrder, error) {
		return s.desk.Finalize(o, deadline)
	})
}

func (s *PurchasingService) UpdateDeadline(ctx context.Context, id, deadline string) (domain.RequestOrder, error) {
	return s.apply(ctx, id, func(o domain.RequestOrder) (domain.RequestOrder, error) {
		return purchasing.UpdateDeadline(o, deadline)
	})
}

// Receive books a delivery against one item of a sent order.
func (s *PurchasingService) Receive(ctx context.Context, id string, r purchasing.Receipt) (domain.RequestOrder, error) {
	return s.apply(ctx, id, func(o domain.RequestOrder) (domain.RequestOrder, error) {
		return s.desk.Receive(o, r)
	})
}

// Traffic returns the goods movement view for [start, end].
func (s *PurchasingService) Traffic(ctx context.Context, start, end string) (*TrafficView, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &TrafficView{
		Orders:     purchasing.ActiveOrders(snap.RequestOrders, start, end),
		Deliveries: purchasing.Deliveries(snap.RequestOrders, start, end),
		Valuation:  purchasing.Value(snap.RawMaterials, snap.FinishGoods),
	}, nil
}

func (s *PurchasingService) apply(ctx context.Context, id string, fn func(domain.RequestOrder) (domain.RequestOrder, error)) (domain.RequestOrder, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.RequestOrder{}, err
	}

	updated, err := fn(current)
	if err != nil {
		return domain.RequestOrder{}, err
	}

	if err := s.store.UpdateRequestOrder(ctx, updated); err != nil {
		return domain.RequestOrder{}, fmt.Errorf("failed to update request order %s: %w", id, err)
	}

	log.Info().
		Str("order_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("purchasing: request order updated")

	s.mirror.order(ctx, updated)
	s.sync.AfterWrite(ctx)
	return updated, nil
}
