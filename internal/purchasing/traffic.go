package purchasing

import (
	"math"
	"sort"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// Valuation is the value of stock on hand.
type Valuation struct {
	TotalRMQty float64         `json:"totalRmQty"`
	TotalFGQty float64         `json:"totalFgQty"`
	RMValue    decimal.Decimal `json:"rmValue"`
	FGValue    decimal.Decimal `json:"fgValue"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// Value prices materials at purchase price per usage unit and products at
// their HPP.
func Value(materials []domain.RawMaterial, goods []domain.FinishGood) Valuation {
	var v Valuation
	v.RMValue = decimal.Zero
	v.FGValue = decimal.Zero

	for _, m := range materials {
		unit := dec(m.PricePerPurchaseUnit).Div(dec(m.Conversion()))
		v.RMValue = v.RMValue.Add(dec(m.Stock).Mul(unit))
		v.TotalRMQty += m.Stock
	}
	for _, g := range goods {
		v.FGValue = v.FGValue.Add(dec(g.Stock).Mul(dec(g.HPP)))
		v.TotalFGQty += g.Stock
	}
	v.TotalValue = v.RMValue.Add(v.FGValue)
	return v
}

// ActiveOrders keeps sent and completed orders dated within [start, end].
func ActiveOrders(orders []domain.RequestOrder, start, end string) []domain.RequestOrder {
	out := make([]domain.RequestOrder, 0, len(orders))
	for _, o := range orders {
		if o.Status != domain.OrderSent && o.Status != domain.OrderCompleted {
			continue
		}
		if inRange(o.Date, start, end) {
			out = append(out, o)
		}
	}
	return out
}

// DeliveryEntry is one delivery with the order context it belongs to.
type DeliveryEntry struct {
	domain.DeliveryBatch
	ROID         string `json:"roId"`
	MaterialName string `json:"materialName"`
	Unit         string `json:"unit"`
}

// Deliveries flattens every delivery dated within [start, end], newest first.
func Deliveries(orders []domain.RequestOrder, start, end string) []DeliveryEntry {
	var out []DeliveryEntry
	for _, o := range orders {
		for _, it := range o.Items {
			for _, del := range it.Deliveries {
				if !inRange(del.Date, start, end) {
					continue
				}
				out = append(out, DeliveryEntry{
					DeliveryBatch: del,
					ROID:          o.ID,
					MaterialName:  it.MaterialName,
					Unit:          it.Unit,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	if out == nil {
		out = []DeliveryEntry{}
	}
	return out
}

func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
