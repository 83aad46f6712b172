package handlers

import (
	"net/http"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/export"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler renders workbooks. With ?save=true the workbook is written
// to the export directory (and bucket) instead of being downloaded.
type ExportHandler struct {
	exporter   *export.Exporter
	planning   *service.PlanningService
	purchasing *service.PurchasingService
	sync       *service.SyncService
}

func NewExportHandler(exporter *export.Exporter, planning *service.PlanningService, purchasing *service.PurchasingService, syncSvc *service.SyncService) *ExportHandler {
	return &ExportHandler{
		exporter:   exporter,
		planning:   planning,
		purchasing: purchasing,
		sync:       syncSvc,
	}
}

// Schedule exports the open schedule.
func (h *ExportHandler) Schedule(c *gin.Context) {
	view, err := h.planning.Schedule(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch schedule")
		return
	}
	wb, err := export.Schedule(view.StartDate, view.Dates, view.Rows)
	h.deliver(c, wb, err)
}

// Requirement exports the requirement of the open schedule.
func (h *ExportHandler) Requirement(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.planning.Schedule(ctx)
	if err != nil {
		respondError(c, err, "failed to fetch schedule")
		return
	}
	req, err := h.planning.Requirement(ctx)
	if err != nil {
		respondError(c, err, "failed to compute requirement")
		return
	}
	snap, err := h.sync.Snapshot(ctx)
	if err != nil {
		respondError(c, err, "failed to read master data")
		return
	}
	wb, err := export.Requirement(view.StartDate, req.Global, req.PerSKU, snap.RawMaterials, snap.FinishGoods)
	h.deliver(c, wb, err)
}

func (h *ExportHandler) RequestOrder(c *gin.Context) {
	order, err := h.purchasing.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to fetch request order")
		return
	}
	wb, err := export.RequestOrder(order)
	h.deliver(c, wb, err)
}

// Template serves an import template for materials, products or sales.
func (h *ExportHandler) Template(c *gin.Context) {
	wb, err := export.Template(c.Param("kind"))
	h.deliver(c, wb, err)
}

func (h *ExportHandler) deliver(c *gin.Context, wb *export.Workbook, err error) {
	if err != nil {
		respondError(c, err, "failed to render workbook")
		return
	}

	if isTrue(c.Query("save")) && h.exporter != nil {
		saved, err := h.exporter.Save(c.Request.Context(), wb)
		if err != nil {
			respondError(c, err, "failed to save workbook")
			return
		}
		c.JSON(http.StatusCreated, saved)
		return
	}

	defer wb.Close()
	data, err := wb.Bytes()
	if err != nil {
		respondError(c, err, "failed to render workbook")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+wb.Name+`"`)
	c.Data(http.StatusOK, mimeXLSX, data)
}
