package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
	"github.com/woodtrack/sawmill/internal/domain/models"
	"github.com/woodtrack/sawmill/internal/service/drying"
)

// DryingHandler exposes the chamber drying cycle endpoints.
type DryingHandler struct {
	svc    *drying.Service
	logger *zap.Logger
}

// NewDryingHandler constructs the HTTP handler adapter.
func NewDryingHandler(svc *drying.Service, logger *zap.Logger) *DryingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DryingHandler{svc: svc, logger: logger}
}

// Load places a batch into an idle chamber.
func (h *DryingHandler) Load(c *gin.Context) {
	var in models.DryingLoadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, errs.Invalidf("invalid request body: %v", err))
		return
	}

	batch, err := h.svc.Load(c.Request.Context(), c.Param("chamberId"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// Unload takes the active batch out of a chamber.
func (h *DryingHandler) Unload(c *gin.Context) {
	batch, err := h.svc.Unload(c.Request.Context(), c.Param("chamberId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// ActiveByChamber lists the chamber's active batch, if any.
func (h *DryingHandler) ActiveByChamber(c *gin.Context) {
	batches, err := h.svc.ActiveByChamber(c.Request.Context(), c.Param("chamberId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// ListActive lists the active batches across all chambers.
func (h *DryingHandler) ListActive(c *gin.Context) {
	batches, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// Erase removes an unloaded batch record.
func (h *DryingHandler) Erase(c *gin.Context) {
	if err := h.svc.Erase(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
