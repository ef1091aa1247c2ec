package metrics

import (
	"net/http"
	"strconv"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsRead counts rows parsed from uploaded exports.
	RowsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_rows_read_total",
			Help: "Total number of rows parsed from uploaded exports",
		},
	)

	// RowsDropped counts rows removed before persistence, by reason.
	RowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_dropped_total",
			Help: "Total number of rows dropped during cleaning",
		},
		[]string{"reason"},
	)

	// FilesWritten counts device/day files written.
	FilesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_device_day_files_written_total",
			Help: "Total number of device/day files written",
		},
	)

	// Uploads counts upload requests by outcome.
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total number of upload requests",
		},
		[]string{"outcome"},
	)

	// ViewReadFailures counts processed files that could not be read while
	// building a chart.
	ViewReadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "view_file_read_failures_total",
			Help: "Total number of processed files that failed to load for a chart",
		},
	)

	// WSClients is the number of open WebSocket connections.
	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	// WSDropped counts notifications skipped because a client was not
	// reading fast enough.
	WSDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped on full client buffers",
		},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Middleware records request count and latency keyed by the matched route
// template, so path variables do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		m := httpsnoop.CaptureMetrics(next, w, r)

		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(m.Code)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(m.Duration.Seconds())
	})
}
