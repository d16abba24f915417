package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"demand-forecast-api/history"
	"demand-forecast-api/models"
	"demand-forecast-api/services"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	svc *services.PredictionService
}

func NewHistoryHandler(svc *services.PredictionService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// GetSlot returns the observed demand for one year, month, weekday and hour.
func (h *HistoryHandler) GetSlot(c *gin.Context) {
	year, err := queryInt(c, "year", 1900, 2100)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	month, err := queryInt(c, "mes", 1, 12)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	weekday, err := queryInt(c, "dia_semana", 1, 7)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hour, err := queryInt(c, "hora", 0, 23)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comparison, err := h.svc.LookupSlot(year, month, weekday, hour)
	switch {
	case errors.Is(err, services.ErrHistoryUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history unavailable", "message": history.UnavailableMessage})
	case errors.Is(err, services.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": "no_data", "message": history.NoDataMessage})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history lookup failed"})
	default:
		c.JSON(http.StatusOK, comparison)
	}
}

// ListObservations pages through the historical rows, newest first. Pass
// next_cursor back as before to get the following page.
func (h *HistoryHandler) ListObservations(c *gin.Context) {
	p, err := ParsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid before cursor"})
		return
	}

	year := 0
	if c.Query("year") != "" {
		y, err := queryInt(c, "year", 1900, 2100)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		year = y
	}

	rows, next, err := h.svc.ListObservations(year, p.Cursor, p.Limit)
	if errors.Is(err, services.ErrHistoryUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history unavailable", "message": history.UnavailableMessage})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}

	resp := CursorResponse{Data: rows, HasMore: next != nil}
	if next != nil {
		resp.NextCursor = next.String()
	}
	if rows == nil {
		resp.Data = []models.HistoricalObservation{}
	}

	c.JSON(http.StatusOK, resp)
}

func queryInt(c *gin.Context, key string, min, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", key)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("invalid %s parameter, must be an integer between %d and %d", key, min, max)
	}
	return v, nil
}
