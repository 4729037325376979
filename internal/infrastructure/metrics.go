package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the reporting pipeline.
type Metrics struct {
	ReportRuns        *prometheus.CounterVec
	ReportRunDuration prometheus.Histogram
	TablesFetched     prometheus.Counter
	WebhookDeliveries *prometheus.CounterVec
}

// NewMetrics registers the pipeline instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ReportRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "report_runs_total",
			Help: "Number of report generation runs by final status.",
		}, []string{"status"}),
		ReportRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "report_run_duration_seconds",
			Help:    "End-to-end duration of a report generation run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		TablesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "upload_tables_fetched_total",
			Help: "Number of raw sales tables downloaded from the uploads service.",
		}),
		WebhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Number of report files posted to the delivery webhook by status.",
		}, []string{"status"}),
	}
}
