package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/service/reporting"
)

// WarehouseHandler exposes stock projections and the daily report trigger.
type WarehouseHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewWarehouseHandler constructs the HTTP handler adapter.
func NewWarehouseHandler(svc *reporting.Service, logger *zap.Logger) *WarehouseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseHandler{svc: svc, logger: logger}
}

// ListLumber lists lumber stock, optionally filtered by condition name.
func (h *WarehouseHandler) ListLumber(c *gin.Context) {
	records, err := h.svc.ListLumberByCondition(c.Request.Context(), c.Query("condition"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListLogs lists the raw-log stock aggregates.
func (h *WarehouseHandler) ListLogs(c *gin.Context) {
	records, err := h.svc.ListLogs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// OverallStats aggregates lumber stock by species and grade.
func (h *WarehouseHandler) OverallStats(c *gin.Context) {
	stats, err := h.svc.OverallStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeleteLumberRecord administratively removes a lumber stock record.
func (h *WarehouseHandler) DeleteLumberRecord(c *gin.Context) {
	if err := h.svc.DeleteLumberRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteLogRecord administratively removes a log stock record.
func (h *WarehouseHandler) DeleteLogRecord(c *gin.Context) {
	if err := h.svc.DeleteLogRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateReport runs the daily report on demand.
func (h *WarehouseHandler) GenerateReport(c *gin.Context) {
	day, err := requireDate(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	report, summary, err := h.svc.GenerateDailyReport(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "summary": summary})
}
