package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/schedule"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Schedule renders a weekly schedule as two sheets: batches per day and the
// same grid converted to packs.
func Schedule(startDate string, days []schedule.Day, rows []schedule.Row) (*Workbook, error) {
	wb, err := newWorkbook(fmt.Sprintf("schedule-%s.xlsx", startDate))
	if err != nil {
		return nil, err
	}

	header := []interface{}{"SKU", "Product", "Qty/Batch"}
	for _, d := range days {
		header = append(header, fmt.Sprintf("%s %s", d.DayName, d.Date))
	}

	for _, packs := range []bool{false, true} {
		name := "Batch"
		if packs {
			name = "Pack"
		}
		sh, err := wb.sheet(name)
		if err != nil {
			wb.Close()
			return nil, err
		}
		cols := append(append([]interface{}{}, header...), "Total", "Target")
		if err := sh.writeHeader(cols...); err != nil {
			wb.Close()
			return nil, err
		}

		totals := make([]float64, len(days)+1)
		for _, r := range rows {
			unit := 1.0
			if packs {
				unit = r.QtyPerBatch
			}
			line := []interface{}{r.SKUID, r.Name, r.QtyPerBatch}
			var total float64
			for i := range days {
				var v float64
				if i < len(r.Days) {
					v = float64(r.Days[i]) * unit
				}
				line = append(line, v)
				totals[i] += v
				total += v
			}
			totals[len(days)] += total
			line = append(line, total, float64(r.TargetBatch)*unit)
			if err := sh.write(line...); err != nil {
				wb.Close()
				return nil, err
			}
		}

		footer := []interface{}{"", "Total", ""}
		for _, t := range totals {
			footer = append(footer, t)
		}
		if err := sh.writeHeader(footer...); err != nil {
			wb.Close()
			return nil, err
		}
		sh.widths(12, 28, 10)
	}
	return wb, nil
}

// Requirement renders a material requirement: the global purchase view and
// one sheet per SKU with the recipe's own material ids.
func Requirement(startDate string, global map[string]float64, perSKU map[string]map[string]float64, materials []domain.RawMaterial, goods []domain.FinishGood) (*Workbook, error) {
	wb, err := newWorkbook(fmt.Sprintf("rm-requirement-%s.xlsx", startDate))
	if err != nil {
		return nil, err
	}
	idx := domain.IndexMaterials(materials)

	sh, err := wb.sheet("Global")
	if err != nil {
		wb.Close()
		return nil, err
	}
	if err := writeAmounts(sh, global, idx); err != nil {
		wb.Close()
		return nil, err
	}

	names := make(map[string]string, len(goods))
	for _, g := range goods {
		names[g.ID] = g.Name
	}
	skus := make([]string, 0, len(perSKU))
	for sku := range perSKU {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	for _, sku := range skus {
		sh, err := wb.sheet(sku)
		if err != nil {
			wb.Close()
			return nil, err
		}
		title := sku
		if n := names[sku]; n != "" {
			title = sku + " - " + n
		}
		if err := sh.write(title); err != nil {
			wb.Close()
			return nil, err
		}
		sh.blank()
		if err := writeAmounts(sh, perSKU[sku], idx); err != nil {
			wb.Close()
			return nil, err
		}
	}
	return wb, nil
}

func writeAmounts(sh *sheetWriter, amounts map[string]float64, idx map[string]domain.RawMaterial) error {
	if err := sh.writeHeader("Material ID", "Material", "Quantity", "Unit"); err != nil {
		return err
	}
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		name, unit := id, ""
		if m, ok := idx[id]; ok {
			if m.Name != "" {
				name = m.Name
			}
			unit = m.UsageUnit
		}
		if err := sh.write(id, name, roundFloat(amounts[id], 2), unit); err != nil {
			return err
		}
	}
	sh.widths(14, 28, 12, 8)
	return nil
}

// RequestOrder renders one request order for the supplier.
func RequestOrder(o domain.RequestOrder) (*Workbook, error) {
	wb, err := newWorkbook(o.ID + ".xlsx")
	if err != nil {
		return nil, err
	}
	sh, err := wb.sheet("Request Order")
	if err != nil {
		wb.Close()
		return nil, err
	}

	meta := [][]interface{}{
		{"Request Order", o.ID},
		{"Date", o.Date},
		{"Deadline", o.Deadline},
		{"Status", string(o.Status)},
	}
	for _, m := range meta {
		if err := sh.write(m...); err != nil {
			wb.Close()
			return nil, err
		}
	}
	sh.blank()

	if err := sh.writeHeader("No", "Material ID", "Material", "Quantity", "Unit", "Received", "Progress", "Status", "ETA"); err != nil {
		wb.Close()
		return nil, err
	}
	for i, it := range o.Items {
		progress := FormatIDFloat(purchasing.Progress(it), 0) + "%"
		if err := sh.write(i+1, it.MaterialID, it.MaterialName, it.Target(), it.Unit,
			it.ReceivedQuantity, progress, string(it.Status), it.EstimatedArrival); err != nil {
			wb.Close()
			return nil, err
		}
	}
	sh.widths(14, 14, 28, 10, 8, 10, 10, 10, 12)
	return wb, nil
}

// Template kinds match the import collections.
const (
	TemplateMaterials = "materials"
	TemplateProducts  = "products"
	TemplateSales     = "sales"
)

var templates = map[string]struct {
	sheet  string
	header []interface{}
	sample []interface{}
}{
	TemplateMaterials: {
		sheet: "Raw Materials",
		header: []interface{}{"id", "name", "usageUnit", "purchaseUnit", "conversionFactor", "stock",
			"minStock", "pricePerPurchaseUnit", "leadTime", "isProcessed", "sourceMaterialId", "processingYield"},
		sample: []interface{}{"RM001", "Daging Sapi", "g", "kg", 1000, 25000, 5000, 120000, 3, false, "", ""},
	},
	TemplateProducts: {
		sheet:  "Finish Goods",
		header: []interface{}{"id", "name", "qtyPerBatch", "stock", "hpp", "isProductionReady", "maxCapacity", "ingredients"},
		sample: []interface{}{"FG001", "Bakso Sapi 500g", 40, 120, 18500, true, "", `[{"materialId":"RM001","quantity":10000}]`},
	},
	TemplateSales: {
		sheet:  "Sales",
		header: []interface{}{"skuId", "date", "quantitySold"},
		sample: []interface{}{"FG001", "2024-03-01", 25},
	},
}

// Template renders an empty import workbook with one sample row.
func Template(kind string) (*Workbook, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	t, ok := templates[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, kind)
	}

	wb, err := newWorkbook(fmt.Sprintf("template-%s.xlsx", kind))
	if err != nil {
		return nil, err
	}
	sh, err := wb.sheet(t.sheet)
	if err != nil {
		wb.Close()
		return nil, err
	}
	if err := sh.writeHeader(t.header...); err != nil {
		wb.Close()
		return nil, err
	}
	if err := sh.write(t.sample...); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}
