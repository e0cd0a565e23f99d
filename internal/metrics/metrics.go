package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resale operation names used as label values
const (
	OperationList     = "list"
	OperationPurchase = "purchase"
	OperationCancel   = "cancel"
)

// OutcomeInvalid labels requests rejected for bad input, whether by the
// HTTP layer or the service
const OutcomeInvalid = "invalid"

var (
	resaleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statarena_resale_operations_total",
			Help: "Total resale operations by outcome, including requests rejected for bad input before any transaction",
		},
		[]string{"operation", "outcome"},
	)

	resaleOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statarena_resale_operation_duration_seconds",
			Help:    "Duration of resale transactions",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
)

// Recorder tracks resale transaction outcomes
type Recorder interface {
	TrackResaleOperation(operation, outcome string, duration time.Duration)
}

type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// TrackResaleOperation counts one finished resale operation and observes its duration
func (m *Monitor) TrackResaleOperation(operation, outcome string, duration time.Duration) {
	resaleOperations.WithLabelValues(operation, outcome).Inc()
	resaleOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Nop discards everything; used where metrics are not wanted, such as unit tests
type Nop struct{}

func (Nop) TrackResaleOperation(string, string, time.Duration) {}
