package handlers

import (
	"math"
	"net/http"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/domain"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the dashboard, production history and sync status.
type ReportHandler struct {
	dashboard *service.DashboardService
	history   *service.HistoryService
	sync      *service.SyncService
}

func NewReportHandler(dashboard *service.DashboardService, history *service.HistoryService, syncSvc *service.SyncService) *ReportHandler {
	return &ReportHandler{dashboard: dashboard, history: history, sync: syncSvc}
}

func (h *ReportHandler) GetDashboard(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	summary, err := h.dashboard.Summary(c.Request.Context(), domain.DashboardFilter{
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	})
	if err != nil {
		respondError(c, err, "failed to fetch dashboard summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) GetSchedules(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	list, err := h.history.Schedules(c.Request.Context(), r.StartDate, r.EndDate)
	if err != nil {
		respondError(c, err, "failed to fetch production history")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReportHandler) GetScheduleDetail(c *gin.Context) {
	detail, err := h.history.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to fetch schedule")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ReportHandler) GetRequirements(c *gin.Context) {
	list, err := h.history.Requirements(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch requirement history")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReportHandler) GetRequirementDetail(c *gin.Context) {
	detail, err := h.history.Requirement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to fetch requirement")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ReportHandler) GetSyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sync.Status())
}

// Refresh refetches the store now. A failed fetch is reported in the body
// and in the sync status; the previous data stays in use.
func (h *ReportHandler) Refresh(c *gin.Context) {
	if err := h.sync.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "failed to refresh from store",
			"details": err.Error(),
			"status":  h.sync.Status(),
		})
		return
	}
	c.JSON(http.StatusOK, h.sync.Status())
}

func itemProgress(items []domain.RequestOrderItem) map[string]float64 {
	out := make(map[string]float64, len(items))
	for _, it := range items {
		out[it.MaterialID] = math.Round(purchasing.Progress(it))
	}
	return out
}
