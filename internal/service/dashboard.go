package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
)

const dateLayout = "2006-01-02"

// DashboardConfig holds the dashboard thresholds.
type DashboardConfig struct {
	// FGSafeStock is the stock level at which a product counts as safe.
	FGSafeStock float64
	// RangeDays is the default traffic window ending today.
	RangeDays int
	Location  *time.Location
}

type DashboardService struct {
	sync *SyncService
	cfg  DashboardConfig
	now  func() time.Time
}

func NewDashboardService(syncSvc *SyncService, cfg DashboardConfig) *DashboardService {
	if cfg.FGSafeStock <= 0 {
		cfg.FGSafeStock = 50
	}
	if cfg.RangeDays <= 0 {
		cfg.RangeDays = 7
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &DashboardService{sync: syncSvc, cfg: cfg, now: time.Now}
}

// Summary builds the command center view for the filter's window.
func (s *DashboardService) Summary(ctx context.Context, filter domain.DashboardFilter) (*domain.DashboardSummary, error) {
	snap, err := s.sync.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.cfg.Location)
	start, end := filter.StartDate, filter.EndDate
	if end == "" {
		end = today.Format(dateLayout)
	}
	if start == "" {
		start = today.AddDate(0, 0, -s.cfg.RangeDays).Format(dateLayout)
	}

	top, total := topProduced(snap.ProductionHistory, snap.FinishGoods)
	value := purchasing.Value(snap.RawMaterials, snap.FinishGoods)
	rmValue, _ := value.RMValue.Float64()
	fgValue, _ := value.FGValue.Float64()

	return &domain.DashboardSummary{
		StartDate:        start,
		EndDate:          end,
		Traffic:          trafficSeries(snap, start, end),
		Orders:           orderTraffic(snap.RequestOrders, today.Format(dateLayout)),
		StockHealth:      s.stockHealth(snap),
		TopProduced:      top,
		TotalProduction:  total,
		InventoryValueRM: rmValue,
		InventoryValueFG: fgValue,
	}, nil
}

// trafficSeries sums delivered material and sold product per day.
func trafficSeries(snap domain.Snapshot, start, end string) []domain.TrafficPoint {
	from, errS := time.Parse(dateLayout, start)
	to, errE := time.Parse(dateLayout, end)
	if errS != nil || errE != nil || to.Before(from) {
		return []domain.TrafficPoint{}
	}

	rmIn := make(map[string]float64)
	for _, o := range snap.RequestOrders {
		for _, it := range o.Items {
			for _, del := range it.Deliveries {
				rmIn[del.Date] += finite(del.Quantity)
			}
		}
	}
	fgOut := make(map[string]float64)
	for _, r := range snap.Sales {
		fgOut[r.Date] += finite(r.QuantitySold)
	}

	var series []domain.TrafficPoint
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		series = append(series, domain.TrafficPoint{Date: key, RMIn: rmIn[key], FGOut: fgOut[key]})
	}
	return series
}

// orderTraffic counts sent orders and their open items due or overdue.
func orderTraffic(orders []domain.RequestOrder, today string) domain.OrderTraffic {
	var t domain.OrderTraffic
	for _, o := range orders {
		if o.Status != domain.OrderSent {
			continue
		}
		t.ActiveCount++
		for _, it := range o.Items {
			if it.Status == domain.ItemReceived || it.EstimatedArrival == "" {
				continue
			}
			if it.EstimatedArrival == today {
				t.DueToday++
			}
			if it.EstimatedArrival < today {
				t.LateCount++
			}
		}
	}
	return t
}

func (s *DashboardService) stockHealth(snap domain.Snapshot) domain.StockHealth {
	var rmSafe, fgSafe int
	for _, m := range snap.RawMaterials {
		if m.Stock >= m.MinStock {
			rmSafe++
		}
	}
	for _, g := range snap.FinishGoods {
		if g.Stock >= s.cfg.FGSafeStock {
			fgSafe++
		}
	}
	return domain.StockHealth{
		RawMaterials: ratio(rmSafe, len(snap.RawMaterials)),
		FinishGoods:  ratio(fgSafe, len(snap.FinishGoods)),
	}
}

func ratio(safe, total int) domain.StockRatio {
	denom := total
	if denom < 1 {
		denom = 1
	}
	return domain.StockRatio{
		Safe:    safe,
		Total:   total,
		Percent: int(math.Round(float64(safe) / float64(denom) * 100)),
	}
}

// topProduced ranks current products by batches across all saved schedules.
func topProduced(history []domain.SavedSchedule, goods []domain.FinishGood) ([]domain.ProducedSKU, int) {
	totals := make(map[string]int)
	total := 0
	for _, sched := range history {
		for sku, days := range sched.Data {
			for _, b := range days {
				totals[sku] += b
			}
		}
		total += sched.TotalBatches
	}

	top := make([]domain.ProducedSKU, 0, len(goods))
	for _, g := range goods {
		if n := totals[g.ID]; n > 0 {
			top = append(top, domain.ProducedSKU{ID: g.ID, Name: g.Name, Batches: n})
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Batches > top[j].Batches
	})
	return top, total
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
