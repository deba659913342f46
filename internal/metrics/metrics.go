package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tender_http_requests_total",
		Help: "Number of HTTP requests by route pattern, method and status code.",
	}, []string{"pattern", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tender_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pattern"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tender_exports_total",
		Help: "Number of tender exports by mode (ids or filter) and result.",
	}, []string{"mode", "result"})

	ExportRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tender_export_rows",
		Help:    "Number of data rows written per export.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	TendersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tender_created_total",
		Help: "Number of tenders created.",
	})
)
