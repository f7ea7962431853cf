package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels submissions that were stored.
	OutcomeSuccess = "success"
	// OutcomeInvalid labels submissions rejected by validation.
	OutcomeInvalid = "invalid"
	// OutcomeError labels submissions the store failed to write.
	OutcomeError = "error"
)

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fdp_feedback",
			Name:      "submissions_total",
			Help:      "Total number of feedback submissions, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	storeOperationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fdp_feedback",
			Name:      "store_operation_seconds",
			Help:      "Response store latency in seconds, partitioned by backend, operation and outcome.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "op", "outcome"},
	)
)

// Register attaches the collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		submissionsTotal,
		storeOperationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSubmission counts one submission with its outcome label.
func ObserveSubmission(outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeInvalid:
	default:
		outcome = OutcomeError
	}
	submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStoreOperation records the duration of one store call.
func ObserveStoreOperation(backend, op string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	if duration < 0 {
		duration = 0
	}
	storeOperationSeconds.WithLabelValues(backend, op, outcome).Observe(duration.Seconds())
}
