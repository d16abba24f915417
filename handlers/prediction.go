package handlers

import (
	"errors"
	"net/http"

	"demand-forecast-api/models"
	"demand-forecast-api/services"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

type PredictionHandler struct {
	svc *services.PredictionService
}

func NewPredictionHandler(svc *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{svc: svc}
}

// Create predicts from a JSON body. Field values may be strings or numbers;
// unusable ones fall back to the configured defaults.
func (h *PredictionHandler) Create(c *gin.Context) {
	var raw models.RawInputs
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), raw)
	if errors.Is(err, models.ErrModelUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model unavailable"})
		return
	}
	if err != nil {
		klog.ErrorS(err, "Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PredictionHandler) Schema(c *gin.Context) {
	names, version, err := h.svc.Schema()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"features":        names,
		"model_version":   version,
		"defaults":        h.svc.Defaults(),
		"reference_years": h.svc.ReferenceYears(),
	})
}
