// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquagem_http_requests_total",
			Help: "Total HTTP requests by method, route template and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aquagem_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route template.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquagem_reconciliations_total",
			Help: "Schedule reconciliations by caller view.",
		},
		[]string{"view"},
	)

	ReconciliationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aquagem_reconciliation_duration_seconds",
			Help:    "Time spent fetching and reconciling one day, by caller view.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"view"},
	)

	DataAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquagem_data_anomalies_total",
			Help: "Malformed or inconsistent directory/ledger records seen during aggregation.",
		},
		[]string{"kind"},
	)

	DeliveriesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquagem_deliveries_recorded_total",
			Help: "Delivery attempts recorded by outcome.",
		},
		[]string{"status"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aquagem_notifications_total",
			Help: "Notification dispatches by channel and result.",
		},
		[]string{"channel", "result"},
	)

	LiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aquagem_live_tracking_subscribers",
			Help: "Connected live-tracking websocket clients.",
		},
	)
)

// Anomaly kinds
const (
	AnomalySkipped     = "skipped"
	AnomalyDuplicate   = "duplicate"
	AnomalyUnscheduled = "unscheduled"
	AnomalyOrphanRoute = "orphan_route"
)

// RecordAnomalies adds n to the anomaly counter for kind when n > 0.
func RecordAnomalies(kind string, n int) {
	if n > 0 {
		DataAnomalies.WithLabelValues(kind).Add(float64(n))
	}
}
