package service

import (
	"context"
	"fmt"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/costing"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/ingest"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// ProductView is a product with its BOM reference cost.
type ProductView struct {
	domain.FinishGood
	BOMCost float64 `json:"bomCost"`
}

// ImportResult reports how many rows a workbook import added.
type ImportResult struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// MasterDataService maintains materials, products and sales. Every write
// replaces the whole collection in the store.
type MasterDataService struct {
	store   repository.Store
	sync    *SyncService
	decoder *ingest.Decoder
}

func NewMasterDataService(store repository.Store, syncSvc *SyncService, decoder *ingest.Decoder) *MasterDataService {
	return &MasterDataService{store: store, sync: syncSvc, decoder: decoder}
}

func (s *MasterDataService) Materials(ctx context.Context) ([]domain.RawMaterial, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.RawMaterials, nil
}

// Products lists every product with its per-unit BOM cost.
func (s *MasterDataService) Products(ctx context.Context) ([]ProductView, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	resolver := costing.NewResolver(snap.RawMaterials)
	out := make([]ProductView, 0, len(snap.FinishGoods))
	for _, g := range snap.FinishGoods {
		cost, _ := resolver.ProductCost(g).Float64()
		out = append(out, ProductView{FinishGood: g, BOMCost: cost})
	}
	return out, nil
}

func (s *MasterDataService) SaveMaterials(ctx context.Context, materials []domain.RawMaterial) error {
	if err := s.store.SyncRawMaterials(ctx, materials); err != nil {
		return fmt.Errorf("failed to sync raw materials: %w", err)
	}
	s.sync.AfterWrite(ctx)
	return nil
}

func (s *MasterDataService) SaveProducts(ctx context.Context, goods []domain.FinishGood) error {
	if err := s.store.SyncFinishGoods(ctx, goods); err != nil {
		return fmt.Errorf("failed to sync finish goods: %w", err)
	}
	s.sync.AfterWrite(ctx)
	return nil
}

func (s *MasterDataService) SaveSales(ctx context.Context, sales []domain.SalesRecord) error {
	if err := s.store.SyncSales(ctx, sales); err != nil {
		return fmt.Errorf("failed to sync sales: %w", err)
	}
	s.sync.AfterWrite(ctx)
	return nil
}

// DeleteMaterials removes materials by id. Recipes that still reference them
// are left alone and cost zero from then on.
func (s *MasterDataService) DeleteMaterials(ctx context.Context, ids []string) (int, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	drop := idSet(ids)
	kept := make([]domain.RawMaterial, 0, len(snap.RawMaterials))
	for _, m := range snap.RawMaterials {
		if !drop[m.ID] {
			kept = append(kept, m)
		}
	}

	removed := len(snap.RawMaterials) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.SaveMaterials(ctx, kept)
}

func (s *MasterDataService) DeleteProducts(ctx context.Context, ids []string) (int, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	drop := idSet(ids)
	kept := make([]domain.FinishGood, 0, len(snap.FinishGoods))
	for _, g := range snap.FinishGoods {
		if !drop[g.ID] {
			kept = append(kept, g)
		}
	}

	removed := len(snap.FinishGoods) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.SaveProducts(ctx, kept)
}

// SetCapacity sets a product's max capacity. A value without a leading
// integer clears it.
func (s *MasterDataService) SetCapacity(ctx context.Context, sku, value string) (*domain.FinishGood, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	goods := append([]domain.FinishGood(nil), snap.FinishGoods...)
	for i := range goods {
		if goods[i].ID != sku {
			continue
		}
		goods[i].MaxCapacity = ingest.OptionalInt(value)
		if err := s.SaveProducts(ctx, goods); err != nil {
			return nil, err
		}
		return &goods[i], nil
	}
	return nil, fmt.Errorf("product %s: %w", sku, repository.ErrNotFound)
}

// ImportMaterials decodes workbook rows and puts them ahead of the
// existing materials.
func (s *MasterDataService) ImportMaterials(ctx context.Context, rows []ingest.Row) (ImportResult, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	imported := s.decoder.ImportRawMaterials(rows)
	if len(imported) == 0 {
		return ImportResult{Total: len(snap.RawMaterials)}, nil
	}

	merged := append(imported, snap.RawMaterials...)
	if err := s.SaveMaterials(ctx, merged); err != nil {
		return ImportResult{}, err
	}

	log.Info().Int("imported", len(imported)).Msg("master data: raw materials imported")
	return ImportResult{Imported: len(imported), Total: len(merged)}, nil
}

func (s *MasterDataService) ImportProducts(ctx context.Context, rows []ingest.Row) (ImportResult, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	imported := s.decoder.ImportFinishGoods(rows)
	if len(imported) == 0 {
		return ImportResult{Total: len(snap.FinishGoods)}, nil
	}

	merged := append(imported, snap.FinishGoods...)
	if err := s.SaveProducts(ctx, merged); err != nil {
		return ImportResult{}, err
	}

	log.Info().Int("imported", len(imported)).Msg("master data: finish goods imported")
	return ImportResult{Imported: len(imported), Total: len(merged)}, nil
}

// ImportSales appends decoded sales rows after the existing history.
func (s *MasterDataService) ImportSales(ctx context.Context, rows []ingest.Row) (ImportResult, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	imported := s.decoder.ImportSales(rows)
	if len(imported) == 0 {
		return ImportResult{Total: len(snap.Sales)}, nil
	}

	merged := append(append([]domain.SalesRecord(nil), snap.Sales...), imported...)
	if err := s.SaveSales(ctx, merged); err != nil {
		return ImportResult{}, err
	}

	log.Info().Int("imported", len(imported)).Msg("master data: sales imported")
	return ImportResult{Imported: len(imported), Total: len(merged)}, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
