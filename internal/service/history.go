package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
)

// ScheduleSummary is one row of the production history list.
type ScheduleSummary struct {
	ID           string `json:"id"`
	StartDate    string `json:"startDate"`
	CreatedAt    string `json:"createdAt"`
	TotalBatches int    `json:"totalBatches"`
}

// ProductionLine is one product's week in a saved schedule.
type ProductionLine struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	DailyBatches    []int               `json:"dailyBatches"`
	TotalBatches    int                 `json:"totalBatches"`
	DailyPacks      []float64           `json:"dailyPacks"`
	TotalPacks      float64             `json:"totalPacks"`
	ReferenceTarget int                 `json:"referenceTarget"`
	Status          domain.TargetStatus `json:"status"`
	IsDeleted       bool                `json:"isDeleted"`
}

type ScheduleDetail struct {
	ScheduleSummary
	Lines []ProductionLine `json:"lines"`
}

// MaterialAmount is a quantity of one material with its display fields.
type MaterialAmount struct {
	MaterialID string  `json:"materialId"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Amount     float64 `json:"amount"`
}

type SKURequirement struct {
	SKUID     string           `json:"skuId"`
	Name      string           `json:"name"`
	Materials []MaterialAmount `json:"materials"`
}

type RequirementDetail struct {
	ID        string           `json:"id"`
	StartDate string           `json:"startDate"`
	CreatedAt string           `json:"createdAt"`
	Global    []MaterialAmount `json:"global"`
	PerSKU    []SKURequirement `json:"perSku"`
}

// HistoryService reads saved schedules and requirements back with names
// resolved against the current master data.
type HistoryService struct {
	sync *SyncService
}

func NewHistoryService(syncSvc *SyncService) *HistoryService {
	return &HistoryService{sync: syncSvc}
}

// Schedules lists saved schedules whose start date is within [start, end].
func (s *HistoryService) Schedules(ctx context.Context, start, end string) ([]ScheduleSummary, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ScheduleSummary, 0, len(snap.ProductionHistory))
	for _, h := range snap.ProductionHistory {
		if h.ID == "" || h.StartDate == "" {
			continue
		}
		if start != "" && h.StartDate < start {
			continue
		}
		if end != "" && h.StartDate > end {
			continue
		}
		out = append(out, summarize(h))
	}
	return out, nil
}

func (s *HistoryService) Schedule(ctx context.Context, id string) (*ScheduleDetail, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	for _, h := range snap.ProductionHistory {
		if h.ID == id {
			return &ScheduleDetail{
				ScheduleSummary: summarize(h),
				Lines:           productionLines(h, snap.FinishGoods),
			}, nil
		}
	}
	return nil, fmt.Errorf("schedule %s: %w", id, repository.ErrNotFound)
}

// productionLines lists every product recorded in data or targets that
// produced at least one batch, sorted by name.
func productionLines(h domain.SavedSchedule, goods []domain.FinishGood) []ProductionLine {
	ids := make([]string, 0, len(h.Data)+len(h.Targets))
	seen := make(map[string]bool)
	for id := range h.Data {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for id := range h.Targets {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	lines := make([]ProductionLine, 0, len(ids))
	for _, id := range ids {
		product, found := matchProduct(goods, id)
		name, perBatch := id, 1.0
		if found {
			name, perBatch = product.Name, product.BatchSize()
		}

		daily := make([]int, 7)
		if row, ok := h.Data[id]; ok {
			daily = append([]int(nil), row...)
		}

		line := ProductionLine{
			ID:              id,
			Name:            name,
			DailyBatches:    daily,
			DailyPacks:      make([]float64, len(daily)),
			ReferenceTarget: h.Targets[id],
			IsDeleted:       !found,
		}
		for i, b := range daily {
			line.TotalBatches += b
			line.DailyPacks[i] = float64(b) * perBatch
			line.TotalPacks += line.DailyPacks[i]
		}
		if line.TotalBatches <= 0 {
			continue
		}
		line.Status = domain.ClassifyTarget(line.TotalBatches, line.ReferenceTarget)
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].ID < lines[j].ID
	})
	return lines
}

// matchProduct finds a product by id or name, ignoring case and spaces.
func matchProduct(goods []domain.FinishGood, key string) (domain.FinishGood, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, g := range goods {
		if strings.ToLower(strings.TrimSpace(g.ID)) == k || strings.ToLower(strings.TrimSpace(g.Name)) == k {
			return g, true
		}
	}
	return domain.FinishGood{}, false
}

func summarize(h domain.SavedSchedule) ScheduleSummary {
	return ScheduleSummary{
		ID:           h.ID,
		StartDate:    h.StartDate,
		CreatedAt:    h.CreatedAt,
		TotalBatches: h.TotalBatches,
	}
}

func (s *HistoryService) Requirements(ctx context.Context) ([]domain.SavedRMRequirement, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.RMHistory, nil
}

// Requirement returns one archived requirement with material and product
// names. Unknown ids are shown as themselves.
func (s *HistoryService) Requirement(ctx context.Context, id string) (*RequirementDetail, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var found *domain.SavedRMRequirement
	for i := range snap.RMHistory {
		if snap.RMHistory[i].ID == id {
			found = &snap.RMHistory[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("requirement %s: %w", id, repository.ErrNotFound)
	}

	materials := snap.MaterialIndex()
	detail := &RequirementDetail{
		ID:        found.ID,
		StartDate: found.StartDate,
		CreatedAt: found.CreatedAt,
		Global:    amounts(found.GlobalData, materials),
		PerSKU:    make([]SKURequirement, 0, len(found.PerSkuData)),
	}

	names := make(map[string]string, len(snap.FinishGoods))
	for _, g := range snap.FinishGoods {
		names[g.ID] = g.Name
	}
	for sku, needs := range found.PerSkuData {
		name := names[sku]
		if name == "" {
			name = sku
		}
		detail.PerSKU = append(detail.PerSKU, SKURequirement{SKUID: sku, Name: name, Materials: amounts(needs, materials)})
	}
	sort.Slice(detail.PerSKU, func(i, j int) bool { return detail.PerSKU[i].SKUID < detail.PerSKU[j].SKUID })
	return detail, nil
}

func amounts(in map[string]float64, materials map[string]domain.RawMaterial) []MaterialAmount {
	out := make([]MaterialAmount, 0, len(in))
	for id, amount := range in {
		a := MaterialAmount{MaterialID: id, Name: id, Amount: amount}
		if m, ok := materials[id]; ok {
			a.Name, a.Unit = m.Name, m.UsageUnit
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MaterialID < out[j].MaterialID })
	return out
}
