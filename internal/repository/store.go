// backend-go/internal/repository/store.go
package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
)

// ErrNotFound is returned when an update targets an id the store does not hold.
var ErrNotFound = errors.New("record not found")

// Store is the spreadsheet-backed system of record. Collections are read as
// one snapshot; writes are whole-collection replacements or single-row
// appends and updates keyed by id.
type Store interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)

	SyncRawMaterials(ctx context.Context, materials []domain.RawMaterial) error
	SyncFinishGoods(ctx context.Context, goods []domain.FinishGood) error
	SyncSales(ctx context.Context, sales []domain.SalesRecord) error

	// SaveSchedule appends a schedule, assigning an id when it has none.
	SaveSchedule(ctx context.Context, s domain.SavedSchedule) (string, error)
	UpdateSchedule(ctx context.Context, s domain.SavedSchedule) error

	// SaveRMRequirement appends an archived requirement under a new id.
	SaveRMRequirement(ctx context.Context, r domain.SavedRMRequirement) (string, error)

	CreateRequestOrder(ctx context.Context, o domain.RequestOrder) error
	// UpdateRequestOrder rewrites items, status and deadline of an order.
	UpdateRequestOrder(ctx context.Context, o domain.RequestOrder) error
}

// Archive mirrors the written artifacts into a queryable database.
type Archive interface {
	ArchiveSchedule(ctx context.Context, s domain.SavedSchedule) error
	ArchiveRMRequirement(ctx context.Context, r domain.SavedRMRequirement) error
	ArchiveRequestOrder(ctx context.Context, o domain.RequestOrder) error
}

// Sheet names of the spreadsheet store.
const (
	SheetRawMaterials      = "rawMaterials"
	SheetFinishGoods       = "finishGoods"
	SheetSales             = "salesData"
	SheetProductionHistory = "productionHistory"
	SheetRMHistory         = "rmHistory"
	SheetRequestOrders     = "requestOrders"
)

// Columns lists the header row of each sheet in storage order.
var Columns = map[string][]string{
	SheetRawMaterials:      {"id", "name", "usageUnit", "purchaseUnit", "conversionFactor", "stock", "minStock", "pricePerPurchaseUnit", "leadTime", "isProcessed", "sourceMaterialId", "processingYield"},
	SheetFinishGoods:       {"id", "name", "qtyPerBatch", "stock", "hpp", "isProductionReady", "ingredients"},
	SheetSales:             {"id", "skuId", "date", "quantitySold"},
	SheetProductionHistory: {"id", "data", "startDate", "createdAt", "totalBatches", "targets"},
	SheetRMHistory:         {"id", "startDate", "createdAt", "globalData", "perSkuData"},
	SheetRequestOrders:     {"id", "date", "items", "status", "deadline", "createdAt"},
}

// Sheets lists sheet names in snapshot order.
var Sheets = []string{
	SheetRawMaterials,
	SheetFinishGoods,
	SheetSales,
	SheetProductionHistory,
	SheetRMHistory,
	SheetRequestOrders,
}
