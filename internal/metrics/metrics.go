package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablero",
			Name:      "http_requests_total",
			Help:      "Count of console API requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablero",
			Name:      "branch_mutation_total",
			Help:      "Count of branch mutations by operation and result.",
		},
		[]string{"op", "result"},
	)

	rollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablero",
			Name:      "branch_rollback_total",
			Help:      "Count of branches rolled back after remote failures.",
		},
		[]string{"op"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablero",
			Name:      "settings_validation_failure_total",
			Help:      "Count of rejected settings saves by failure kind.",
		},
		[]string{"kind"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, mutations, rollbacks, validationFailures)
	})
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncMutation(op, result string) {
	mutations.WithLabelValues(op, result).Inc()
}

func AddRollbacks(op string, n int) {
	if n > 0 {
		rollbacks.WithLabelValues(op).Add(float64(n))
	}
}

func IncValidationFailure(kind string) {
	validationFailures.WithLabelValues(kind).Inc()
}
