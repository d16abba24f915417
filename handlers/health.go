package handlers

import (
	"net/http"

	"demand-forecast-api/services"

	"github.com/gin-gonic/gin"
)

// Health reports UP while the process serves requests. A missing model or
// dataset is reported as DEGRADED, never as a failure.
func Health(svc *services.PredictionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := svc.Status()
		status := "UP"
		if !st.ModelReady || !st.HistoryReady {
			status = "DEGRADED"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  status,
			"message": "Demand Forecast API is running",
			"details": st,
		})
	}
}
