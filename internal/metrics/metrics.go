package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcform_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gcform_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	Fields = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gcform_schema_fields",
			Help: "Number of fields in the active schema",
		},
	)
	Records = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gcform_records",
			Help: "Number of stored records",
		},
	)
	SchemaChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcform_schema_changes_total",
			Help: "Persisted schema mutations",
		},
		[]string{"op"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcform_submissions_total",
			Help: "Record submissions by outcome",
		},
		[]string{"result"},
	)
	ValidationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcform_validation_errors_total",
			Help: "Validation failures by code",
		},
		[]string{"code"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcform_store_errors_total",
			Help: "Store failures by store and kind",
		},
		[]string{"store", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequests,
		APILatency,
		Fields,
		Records,
		SchemaChanges,
		Submissions,
		ValidationErrors,
		StoreErrors,
	)
}

// Counter is implemented by services able to count their stored state.
type Counter interface {
	CountFields() (int, error)
	CountRecords() (int, error)
}

// Refresh sets the state gauges from c. Gauges whose count fails keep their
// previous value.
func Refresh(c Counter) error {
	var firstErr error
	if n, err := c.CountFields(); err == nil {
		Fields.Set(float64(n))
	} else {
		firstErr = err
	}
	if n, err := c.CountRecords(); err == nil {
		Records.Set(float64(n))
	} else if firstErr == nil {
		firstErr = err
	}
	return firstErr
}
