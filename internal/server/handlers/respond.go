package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/domain/errs"
)

const dateLayout = "2006-01-02"

// respondError maps domain errors onto HTTP statuses and writes the JSON
// error body.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrMissingReference):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// queryDate parses an optional date query parameter. A missing parameter
// yields a nil time.
func queryDate(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errs.Invalidf("%s must be a %s date, got %q", name, dateLayout, raw)
	}
	return &t, nil
}

// requireDate parses a mandatory date query parameter, defaulting to today
// when absent.
func requireDate(c *gin.Context, name string) (time.Time, error) {
	t, err := queryDate(c, name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Now().UTC(), nil
	}
	return *t, nil
}
