package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/service/workshop"
)

// WorkshopHandler exposes the workshop throughput endpoints.
type WorkshopHandler struct {
	svc    *workshop.Service
	logger *zap.Logger
}

// NewWorkshopHandler constructs the HTTP handler adapter.
func NewWorkshopHandler(svc *workshop.Service, logger *zap.Logger) *WorkshopHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkshopHandler{svc: svc, logger: logger}
}

// RecordOutput saves one sawing run.
func (h *WorkshopHandler) RecordOutput(c *gin.Context) {
	var in models.ThroughputInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	rec, err := h.svc.RecordOutput(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Edit changes a recorded output's amount.
func (h *WorkshopHandler) Edit(c *gin.Context) {
	var req editAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	rec, err := h.svc.Edit(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes a recorded output.
func (h *WorkshopHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats lists output statistics in the start/end day range.
func (h *WorkshopHandler) Stats(c *gin.Context) {
	start, err := queryDate(c, "start")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	end, err := queryDate(c, "end")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.svc.StatsBetween(c.Request.Context(), c.Param("workshopId"), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DayStats lists output statistics for a single day.
func (h *WorkshopHandler) DayStats(c *gin.Context) {
	day, err := requireDate(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.svc.DayStats(c.Request.Context(), c.Param("workshopId"), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Profit reports daily profitability for the start/end day range.
func (h *WorkshopHandler) Profit(c *gin.Context) {
	start, err := queryDate(c, "start")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	end, err := queryDate(c, "end")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entries, err := h.svc.Profit(c.Request.Context(), c.Param("workshopId"), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
