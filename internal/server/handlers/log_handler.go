package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/service/movement"
)

// LogHandler exposes the raw-log arrival and shipment endpoints.
type LogHandler struct {
	svc    *movement.LogService
	logger *zap.Logger
}

// NewLogHandler constructs the HTTP handler adapter.
func NewLogHandler(svc *movement.LogService, logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{svc: svc, logger: logger}
}

type editVolumeRequest struct {
	Volume decimal.Decimal `json:"volume" binding:"required"`
}

// CreateArrival records one incoming log movement.
func (h *LogHandler) CreateArrival(c *gin.Context) {
	var in models.LogEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	ev, err := h.svc.CreateArrival(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// CreateArrivalBatch records several log arrivals with per-item commits.
func (h *LogHandler) CreateArrivalBatch(c *gin.Context) {
	var ins []models.LogEventInput
	if err := c.ShouldBindJSON(&ins); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	created, failures := h.svc.CreateArrivalBatch(c.Request.Context(), ins)
	c.JSON(http.StatusOK, gin.H{"created": created, "failures": failures})
}

// EditArrival changes an arrival's volume.
func (h *LogHandler) EditArrival(c *gin.Context) {
	var req editVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	ev, err := h.svc.EditArrival(c.Request.Context(), c.Param("id"), req.Volume)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteArrival removes an arrival and rolls its volume out of stock.
func (h *LogHandler) DeleteArrival(c *gin.Context) {
	if err := h.svc.DeleteArrival(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListArrivals lists log arrivals in the start/end day range.
func (h *LogHandler) ListArrivals(c *gin.Context) {
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

	result, err := h.svc.ArrivalsBetween(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ArrivalDayStats summarizes one day of log arrivals.
func (h *LogHandler) ArrivalDayStats(c *gin.Context) {
	day, err := requireDate(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.svc.ArrivalDayStats(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateShipment records one outgoing log movement.
func (h *LogHandler) CreateShipment(c *gin.Context) {
	var in models.LogEventInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	ev, err := h.svc.CreateShipment(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

// CreateShipmentBatch records several log shipments with per-item commits.
func (h *LogHandler) CreateShipmentBatch(c *gin.Context) {
	var ins []models.LogEventInput
	if err := c.ShouldBindJSON(&ins); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	created, failures := h.svc.CreateShipmentBatch(c.Request.Context(), ins)
	c.JSON(http.StatusOK, gin.H{"created": created, "failures": failures})
}

// EditShipment changes a shipment's volume.
func (h *LogHandler) EditShipment(c *gin.Context) {
	var req editVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	ev, err := h.svc.EditShipment(c.Request.Context(), c.Param("id"), req.Volume)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteShipment removes a shipment and returns its volume to stock.
func (h *LogHandler) DeleteShipment(c *gin.Context) {
	if err := h.svc.DeleteShipment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListShipments lists log shipments in the start/end day range.
func (h *LogHandler) ListShipments(c *gin.Context) {
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

	result, err := h.svc.ShipmentsBetween(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ShipmentDayStats summarizes one day of log shipments.
func (h *LogHandler) ShipmentDayStats(c *gin.Context) {
	day, err := requireDate(c, "date")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.svc.ShipmentDayStats(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
