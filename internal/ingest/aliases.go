package ingest

import (
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/google/uuid"
)

// Alias tables map canonical field names to the headers seen in workbooks
// prepared by hand.
var (
	RawMaterialAliases = map[string][]string{
		"id":                   {"id", "kode", "code"},
		"name":                 {"name", "nama"},
		"usageUnit":            {"usageUnit", "unit", "satuan"},
		"purchaseUnit":         {"purchaseUnit", "satuan beli"},
		"conversionFactor":     {"conversionFactor", "konversi"},
		"stock":                {"stock", "stok"},
		"minStock":             {"minStock", "min stok"},
		"leadTime":             {"leadTime", "lead time"},
		"pricePerPurchaseUnit": {"pricePerPurchaseUnit", "price", "harga"},
		"isProcessed":          {"isProcessed"},
		"sourceMaterialId":     {"sourceMaterialId"},
		"processingYield":      {"processingYield"},
	}

	FinishGoodAliases = map[string][]string{
		"id":                {"id", "sku"},
		"name":              {"name", "nama"},
		"qtyPerBatch":       {"qtyPerBatch", "yield"},
		"stock":             {"stock", "stok"},
		"hpp":               {"hpp", "harga pokok"},
		"isProductionReady": {"isProductionReady"},
		"ingredients":       {"ingredients", "resep", "bom"},
	}

	SalesAliases = map[string][]string{
		"id":           {"id"},
		"skuId":        {"skuId", "sku", "kode produk"},
		"date":         {"date", "tanggal", "tgl"},
		"quantitySold": {"quantitySold", "qty", "quantity", "terjual", "jumlah"},
	}
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// Canonicalize rekeys row using aliases. The first alias present wins;
// unknown columns are dropped.
func Canonicalize(row Row, aliases map[string][]string) Row {
	byNorm := make(map[string]any, len(row))
	for k, v := range row {
		byNorm[normalizeColumnName(k)] = v
	}

	out := make(Row, len(aliases))
	for field, names := range aliases {
		for _, name := range names {
			if v, ok := byNorm[normalizeColumnName(name)]; ok {
				if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
					continue
				}
				out[field] = v
				break
			}
		}
	}
	return out
}

// ImportRawMaterials decodes hand-prepared material rows, generating ids for
// rows that have none and defaulting the conversion factor to 1.
func (d *Decoder) ImportRawMaterials(rows []Row) []domain.RawMaterial {
	canon := make([]Row, 0, len(rows))
	for _, row := range rows {
		c := Canonicalize(row, RawMaterialAliases)
		if len(c) == 0 {
			continue
		}
		if String(c["id"]) == "" {
			c["id"] = "RM-" + shortID()
		}
		canon = append(canon, c)
	}
	materials := d.RawMaterials(canon)
	for i := range materials {
		if materials[i].ConversionFactor == 0 {
			materials[i].ConversionFactor = 1
		}
	}
	return materials
}

// ImportFinishGoods decodes hand-prepared product rows.
func (d *Decoder) ImportFinishGoods(rows []Row) []domain.FinishGood {
	canon := make([]Row, 0, len(rows))
	for _, row := range rows {
		c := Canonicalize(row, FinishGoodAliases)
		if len(c) == 0 {
			continue
		}
		if String(c["id"]) == "" {
			c["id"] = "FG-" + shortID()
		}
		canon = append(canon, c)
	}
	goods := d.FinishGoods(canon)
	for i := range goods {
		if goods[i].QtyPerBatch == 0 {
			goods[i].QtyPerBatch = 1
		}
	}
	return goods
}

// ImportSales decodes hand-prepared sales rows, generating record ids.
func (d *Decoder) ImportSales(rows []Row) []domain.SalesRecord {
	canon := make([]Row, 0, len(rows))
	for _, row := range rows {
		c := Canonicalize(row, SalesAliases)
		if len(c) == 0 {
			continue
		}
		if String(c["id"]) == "" {
			c["id"] = uuid.NewString()
		}
		canon = append(canon, c)
	}
	return d.Sales(canon)
}

func shortID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
