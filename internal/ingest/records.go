package ingest

import (
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

// RawMaterials decodes material rows. Rows without an id are dropped.
func (d *Decoder) RawMaterials(rows []Row) []domain.RawMaterial {
	out := make([]domain.RawMaterial, 0, len(rows))
	for _, row := range rows {
		var m domain.RawMaterial
		decode(row, &m)
		if m.ID == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FinishGoods decodes product rows. A product is production-ready unless the
// row says otherwise.
func (d *Decoder) FinishGoods(rows []Row) []domain.FinishGood {
	out := make([]domain.FinishGood, 0, len(rows))
	for _, row := range rows {
		g := domain.FinishGood{IsProductionReady: true}
		decode(row, &g)
		if g.ID == "" {
			continue
		}
		g.Ingredients = Ingredients(row["ingredients"])
		out = append(out, g)
	}
	return out
}

// Sales decodes sales rows and normalizes their dates.
func (d *Decoder) Sales(rows []Row) []domain.SalesRecord {
	out := make([]domain.SalesRecord, 0, len(rows))
	for _, row := range rows {
		var s domain.SalesRecord
		decode(row, &s)
		s.Date = Date(row["date"], d.loc)
		if s.SKUID == "" || s.Date == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Schedules decodes production history rows. Rows missing an id or a start
// date are dropped.
func (d *Decoder) Schedules(rows []Row) []domain.SavedSchedule {
	out := make([]domain.SavedSchedule, 0, len(rows))
	for _, row := range rows {
		var s domain.SavedSchedule
		decode(row, &s)
		s.StartDate = Date(row["startDate"], d.loc)
		if s.ID == "" || s.StartDate == "" {
			continue
		}
		s.Data = ScheduleData(row["data"])
		s.Targets = Targets(row["targets"])
		out = append(out, s)
	}
	return out
}

// RMHistory decodes archived requirement rows.
func (d *Decoder) RMHistory(rows []Row) []domain.SavedRMRequirement {
	out := make([]domain.SavedRMRequirement, 0, len(rows))
	for _, row := range rows {
		var r domain.SavedRMRequirement
		decode(row, &r)
		if r.ID == "" {
			continue
		}
		r.StartDate = Date(row["startDate"], d.loc)
		r.GlobalData = Quantities(row["globalData"])
		r.PerSkuData = PerSKU(row["perSkuData"])
		out = append(out, r)
	}
	return out
}

// RequestOrders decodes request order rows. Items are read from "items" or,
// for rows written by older clients, "JSONItems"/"jsonItems".
func (d *Decoder) RequestOrders(rows []Row) []domain.RequestOrder {
	out := make([]domain.RequestOrder, 0, len(rows))
	for _, row := range rows {
		var o domain.RequestOrder
		decode(row, &o)
		if o.ID == "" {
			continue
		}
		o.Date = Date(row["date"], d.loc)
		o.Deadline = Date(row["deadline"], d.loc)
		o.Items = Items(firstPresent(row, "items", "JSONItems", "jsonItems"))
		if status, ok := domain.ParseOrderStatus(string(o.Status)); ok {
			o.Status = status
		} else {
			o.Status = domain.OrderDraft
		}
		out = append(out, o)
	}
	return out
}

// Snapshot decodes a combined payload keyed by collection name.
func (d *Decoder) Snapshot(raw map[string]any) domain.Snapshot {
	return domain.Snapshot{
		RawMaterials:      d.RawMaterials(rowsOf(raw["rawMaterials"])),
		FinishGoods:       d.FinishGoods(rowsOf(raw["finishGoods"])),
		Sales:             d.Sales(rowsOf(raw["salesData"])),
		ProductionHistory: d.Schedules(rowsOf(raw["productionHistory"])),
		RMHistory:         d.RMHistory(rowsOf(raw["rmHistory"])),
		RequestOrders:     d.RequestOrders(rowsOf(raw["requestOrders"])),
	}
}

func rowsOf(v any) []Row {
	if s, ok := v.(string); ok {
		v = parseJSONText(s)
	}
	switch t := v.(type) {
	case []Row:
		return t
	case []any:
		rows := make([]Row, 0, len(t))
		for _, item := range t {
			if row, ok := item.(Row); ok {
				rows = append(rows, row)
			}
		}
		return rows
	}
	return nil
}

func firstPresent(row Row, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}
