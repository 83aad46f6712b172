package handlers

import (
	"net/http"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/demand"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/reorder"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanningHandler struct {
	service *service.PlanningService
}

func NewPlanningHandler(service *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

type analyzeRequest struct {
	StartDate string `json:"startDate" binding:"required,isodate"`
	EndDate   string `json:"endDate" binding:"required,isodate"`
}

type newScheduleRequest struct {
	StartDate string         `json:"startDate" binding:"required,isodate"`
	Handoff   demand.Handoff `json:"handoff"`
}

type cellRequest struct {
	SKU   string `json:"sku" binding:"required"`
	Day   *int   `json:"day" binding:"required"`
	Value string `json:"value"`
}

type startRequest struct {
	StartDate string `json:"startDate" binding:"required,isodate"`
}

type runRequest struct {
	StartDate     string           `json:"startDate" binding:"required,isodate"`
	EndDate       string           `json:"endDate" binding:"required,isodate"`
	ScheduleStart string           `json:"scheduleStart" binding:"omitempty,isodate"`
	Requests      map[string]int   `json:"requests"`
	Grid          map[string][]int `json:"grid"`
	SafetyDays    map[string]int   `json:"safetyDays"`
}

// Analyze returns sales statistics, weekly targets and the schedule
// hand-off for a sales window.
func (h *PlanningHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.service.Analyze(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		respondError(c, err, "failed to analyze sales")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PlanningHandler) GetRequests(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Requests())
}

// SetRequest records a manual weekly sales request. Empty or non-numeric
// values clear it.
func (h *PlanningHandler) SetRequest(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.service.SetRequest(c.Param("sku"), req.Value)
	c.JSON(http.StatusOK, h.service.Requests())
}

func (h *PlanningHandler) NewSchedule(c *gin.Context) {
	var req newScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.service.NewSchedule(c.Request.Context(), req.StartDate, req.Handoff)
	if err != nil {
		respondError(c, err, "failed to start schedule")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *PlanningHandler) EditSchedule(c *gin.Context) {
	view, err := h.service.EditSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to open schedule")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) GetSchedule(c *gin.Context) {
	view, err := h.service.Schedule(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to fetch schedule")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) SetCell(c *gin.Context) {
	var req cellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.service.SetCell(req.SKU, *req.Day, req.Value)
	if err != nil {
		respondError(c, err, "failed to update schedule cell")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) SetScheduleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.service.SetScheduleStart(req.StartDate)
	if err != nil {
		respondError(c, err, "failed to move schedule")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) SaveSchedule(c *gin.Context) {
	saved, err := h.service.SaveSchedule(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to save schedule")
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *PlanningHandler) GetRequirement(c *gin.Context) {
	req, err := h.service.Requirement(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to compute requirement")
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *PlanningHandler) ArchiveRequirement(c *gin.Context) {
	saved, err := h.service.ArchiveRequirement(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to archive requirement")
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// SyncToReorder hands the current requirement to the reorder table.
func (h *PlanningHandler) SyncToReorder(c *gin.Context) {
	view, err := h.service.SyncToReorder(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to sync requirement")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) GetReorder(c *gin.Context) {
	view, err := h.service.Reorder()
	if err != nil {
		respondError(c, err, "failed to fetch reorder table")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) SetSafetyDays(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.SetSafetyDays(c.Param("id"), req.Value))
}

// Run executes the whole pipeline in one call without touching the session.
func (h *PlanningHandler) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	in := pipeline.Input{
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ScheduleStart: req.ScheduleStart,
		Requests:      req.Requests,
		Grid:          req.Grid,
	}
	if req.SafetyDays != nil {
		in.SafetyOverrides = reorder.Settings(req.SafetyDays)
	}

	run, err := h.service.Run(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "planning run failed")
		return
	}
	c.JSON(http.StatusOK, run)
}
