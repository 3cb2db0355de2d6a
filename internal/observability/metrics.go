package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmotionsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fer",
		Name:      "emotions_detected_total",
		Help:      "Total number of classified photos by detected emotion",
	}, []string{"emotion"})

	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fer",
		Name:      "submissions_total",
		Help:      "Total number of submissions by outcome",
	}, []string{"status"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fer",
		Name:      "inference_duration_seconds",
		Help:      "Duration of ML inference stages",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
	}, []string{"stage"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fer",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fer",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
