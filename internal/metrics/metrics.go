package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ReloadsTotal        *prometheus.CounterVec
	RecordsLoaded       *prometheus.GaugeVec
	RowsRejected        prometheus.Counter
	SearchQueries       prometheus.Counter
	SearchResults       prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid clashes on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ReloadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_reloads_total",
				Help: "Source reload attempts by source and outcome.",
			},
			[]string{"source", "status"},
		),
		RecordsLoaded: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_records",
				Help: "Records in the currently installed data set.",
			},
			[]string{"kind"},
		),
		RowsRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_rows_rejected_total",
			Help: "Standards rows skipped for a missing required field.",
		}),
		SearchQueries: f.NewCounter(prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Search queries served.",
		}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "search_results",
			Help:    "Results returned per search query.",
			Buckets: []float64{0, 1, 2, 5, 10},
		}),
	}
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
