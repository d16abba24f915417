package handlers

import (
	"demand-forecast-api/config"
	"demand-forecast-api/middleware"
	"demand-forecast-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Service *services.PredictionService
	Cache   *services.CacheService
	CORS    config.CORSConfig
	Channel string
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.Metrics(), middleware.SetupCORS(deps.CORS))
	router.SetHTMLTemplate(tmpl)

	form := NewFormHandler(deps.Service)
	router.GET("/", form.Show)
	router.POST("/", form.Submit)

	router.GET("/health", Health(deps.Service))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	predictions := NewPredictionHandler(deps.Service)
	hist := NewHistoryHandler(deps.Service)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/predictions", predictions.Create)
		v1.GET("/schema", predictions.Schema)
		v1.GET("/history", hist.GetSlot)
		v1.GET("/history/observations", hist.ListObservations)
		v1.GET("/ws/predictions", LivePredictions(deps.Cache, deps.Channel))
	}

	return router, nil
}
