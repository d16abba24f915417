package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demand_forecast_predictions_total",
		Help: "Total number of predictions returned, by source.",
	}, []string{"source"})
	predictionsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demand_forecast_predictions_failed_total",
		Help: "Total number of prediction failures, by reason.",
	}, []string{"reason"})
	predictionsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demand_forecast_predictions_published_total",
		Help: "Total number of predictions published to Redis.",
	})
	predictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "demand_forecast_prediction_duration_seconds",
		Help:    "Duration of model inference for one submission.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})
	featuresZeroFilled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demand_forecast_features_zero_filled_total",
		Help: "Model features not supplied by the form and sent as 0.",
	}, []string{"feature"})
	historyLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demand_forecast_history_lookups_total",
		Help: "Historical comparator lookups, by outcome.",
	}, []string{"outcome"})
)
