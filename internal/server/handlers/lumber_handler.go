package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/service/movement"
)

// LumberHandler exposes the sawn-lumber arrival and shipment endpoints.
type LumberHandler struct {
	svc    *movement.LumberService
	logger *zap.Logger
}

// NewLumberHandler constructs the HTTP handler adapter.
func NewLumberHandler(svc *movement.LumberService, logger *zap.Logger) *LumberHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LumberHandler{svc: svc, logger: logger}
}

type editAmountRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// CreateArrival records one incoming lumber movement.
func (h *LumberHandler) CreateArrival(c *gin.Context) {
	var in models.LumberEventInput
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

// CreateArrivalBatch records several arrivals with per-item commits.
func (h *LumberHandler) CreateArrivalBatch(c *gin.Context) {
	var ins []models.LumberEventInput
	if err := c.ShouldBindJSON(&ins); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	created, failures := h.svc.CreateArrivalBatch(c.Request.Context(), ins)
	c.JSON(http.StatusOK, gin.H{"created": created, "failures": failures})
}

// EditArrival changes an arrival's amount.
func (h *LumberHandler) EditArrival(c *gin.Context) {
	var req editAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	ev, err := h.svc.EditArrival(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteArrival removes an arrival and rolls its amount out of stock.
func (h *LumberHandler) DeleteArrival(c *gin.Context) {
	if err := h.svc.DeleteArrival(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListArrivals lists arrivals in the start/end day range.
func (h *LumberHandler) ListArrivals(c *gin.Context) {
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

// ArrivalDayStats summarizes one day of arrivals.
func (h *LumberHandler) ArrivalDayStats(c *gin.Context) {
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

// CreateShipment records one outgoing lumber movement.
func (h *LumberHandler) CreateShipment(c *gin.Context) {
	var in models.LumberEventInput
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

// CreateShipmentBatch records several shipments with per-item commits.
func (h *LumberHandler) CreateShipmentBatch(c *gin.Context) {
	var ins []models.LumberEventInput
	if err := c.ShouldBindJSON(&ins); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	created, failures := h.svc.CreateShipmentBatch(c.Request.Context(), ins)
	c.JSON(http.StatusOK, gin.H{"created": created, "failures": failures})
}

// EditShipment changes a shipment's amount.
func (h *LumberHandler) EditShipment(c *gin.Context) {
	var req editAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	ev, err := h.svc.EditShipment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteShipment removes a shipment and returns its amount to stock.
func (h *LumberHandler) DeleteShipment(c *gin.Context) {
	if err := h.svc.DeleteShipment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListShipments lists shipments in the start/end day range.
func (h *LumberHandler) ListShipments(c *gin.Context) {
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

// ShipmentDayStats summarizes one day of shipments.
func (h *LumberHandler) ShipmentDayStats(c *gin.Context) {
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
