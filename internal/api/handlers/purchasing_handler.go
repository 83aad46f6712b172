package handlers

import (
	"net/http"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type PurchasingHandler struct {
	service  *service.PurchasingService
	planning *service.PlanningService
}

func NewPurchasingHandler(service *service.PurchasingService, planning *service.PlanningService) *PurchasingHandler {
	return &PurchasingHandler{service: service, planning: planning}
}

type finalizeRequest struct {
	Deadline string `json:"deadline" binding:"omitempty,isodate"`
}

type deadlineRequest struct {
	Deadline string `json:"deadline" binding:"required,isodate"`
}

// CreateOrder drafts a request order from the flagged rows of the current
// reorder table.
func (h *PurchasingHandler) CreateOrder(c *gin.Context) {
	rows, err := h.planning.ReorderRows()
	if err != nil {
		respondError(c, err, "failed to read reorder table")
		return
	}
	order, err := h.service.CreateOrder(c.Request.Context(), rows)
	if err != nil {
		respondError(c, err, "failed to create request order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders lists request orders dated within the optional range.
func (h *PurchasingHandler) GetOrders(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	book, err := h.service.Orders(c.Request.Context(), r.StartDate, r.EndDate)
	if err != nil {
		respondError(c, err, "failed to fetch request orders")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *PurchasingHandler) GetOrder(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "failed to fetch request order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":    order,
		"late":     purchasing.IsLate(order),
		"progress": itemProgress(order.Items),
	})
}

// Finalize sends a draft order to the supplier.
func (h *PurchasingHandler) Finalize(c *gin.Context) {
	var req finalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	order, err := h.service.Finalize(c.Request.Context(), c.Param("id"), req.Deadline)
	if err != nil {
		respondError(c, err, "failed to finalize request order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *PurchasingHandler) UpdateDeadline(c *gin.Context) {
	var req deadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.service.UpdateDeadline(c.Request.Context(), c.Param("id"), req.Deadline)
	if err != nil {
		respondError(c, err, "failed to update deadline")
		return
	}
	c.JSON(http.StatusOK, order)
}

// Receive books a delivery against one order item.
func (h *PurchasingHandler) Receive(c *gin.Context) {
	var receipt purchasing.Receipt
	if err := c.ShouldBindJSON(&receipt); err != nil {
		bindError(c, err)
		return
	}
	order, err := h.service.Receive(c.Request.Context(), c.Param("id"), receipt)
	if err != nil {
		respondError(c, err, "failed to record delivery")
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetTraffic returns active orders, delivery history and stock valuation.
func (h *PurchasingHandler) GetTraffic(c *gin.Context) {
	r, ok := bindDateRange(c)
	if !ok {
		return
	}
	view, err := h.service.Traffic(c.Request.Context(), r.StartDate, r.EndDate)
	if err != nil {
		respondError(c, err, "failed to fetch traffic")
		return
	}
	c.JSON(http.StatusOK, view)
}
