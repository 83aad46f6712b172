package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/andresuchdata/ppic-planner/backend-go/internal/api/middleware"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/export"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/requirement"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/pipeline/schedule"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/purchasing"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/repository"
	"github.com/andresuchdata/ppic-planner/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// errorStatuses maps caller-actionable errors to a status code. Anything
// else is a 500.
var errorStatuses = []struct {
	err    error
	status int
}{
	{repository.ErrNotFound, http.StatusNotFound},
	{purchasing.ErrOrderNotFound, http.StatusNotFound},
	{purchasing.ErrItemNotFound, http.StatusNotFound},
	{purchasing.ErrInvalidTransition, http.StatusConflict},
	{service.ErrNoSession, http.StatusConflict},
	{service.ErrNoDemand, http.StatusConflict},
	{purchasing.ErrNothingToOrder, http.StatusUnprocessableEntity},
	{requirement.ErrNoRequirements, http.StatusUnprocessableEntity},
	{schedule.ErrUnknownProduct, http.StatusUnprocessableEntity},
	{purchasing.ErrInvalidQuantity, http.StatusBadRequest},
	{purchasing.ErrInvalidDate, http.StatusBadRequest},
	{schedule.ErrDayOutOfRange, http.StatusBadRequest},
	{schedule.ErrInvalidStart, http.StatusBadRequest},
	{export.ErrUnknownTemplate, http.StatusNotFound},
}

func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status its sentinel maps to.
func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

// bindError rejects a malformed request body or query.
func bindError(c *gin.Context, err error) {
	resp := gin.H{
		"error":   "invalid request",
		"details": err.Error(),
	}
	if fields := middleware.ValidationDetails(err); fields != nil {
		resp["fields"] = fields
	}
	c.JSON(http.StatusBadRequest, resp)
}

// dateRange reads the optional start_date/end_date query pair.
type dateRange struct {
	StartDate string `form:"start_date" binding:"omitempty,isodate"`
	EndDate   string `form:"end_date" binding:"omitempty,isodate"`
}

func bindDateRange(c *gin.Context) (dateRange, bool) {
	var r dateRange
	if err := c.ShouldBindQuery(&r); err != nil {
		bindError(c, err)
		return r, false
	}
	return r, true
}

func isTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
