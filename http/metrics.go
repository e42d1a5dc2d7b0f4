package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mediscan",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediscan",
			Name:      "predictions_total",
			Help:      "Scored predictions by model and resulting risk level.",
		}, []string{"model", "risk_level"})

	predictionCacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mediscan",
			Name:      "prediction_cache_events_total",
			Help:      "Prediction cache hits and misses.",
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(requestDuration, predictionsTotal, predictionCacheEvents)
}
