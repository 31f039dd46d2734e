package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "langid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Identification metrics
	identifyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_identify_requests_total",
			Help: "Total number of identification requests",
		},
		[]string{"source", "status"}, // source: http, websocket
	)

	identifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "langid_identify_duration_seconds",
			Help:    "Identification duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"source"},
	)

	identifyTextBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "langid_identify_text_bytes",
			Help:    "Size of identified text in bytes",
			Buckets: []float64{16, 64, 256, 1024, 4096, 16384, 65536, 262144, 1048576},
		},
		[]string{"source"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, data
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "langid_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "langid_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
