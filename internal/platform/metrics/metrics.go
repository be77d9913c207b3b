package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the claim registry.
type Metrics struct {
	// Operation outcomes by operation and result code ("ok" on success)
	Operations *prometheus.CounterVec

	// Operation latency by operation
	OperationDuration *prometheus.HistogramVec

	// Collaborator call latency by collaborator and outcome
	CollaboratorDuration *prometheus.HistogramVec

	ClaimsSubmitted prometheus.Counter
	PayoutsExecuted prometheus.Counter
}

// New registers the claim metrics with reg. A nil reg uses the default
// Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_operations_total",
			Help: "Claim registry operations by operation and result code",
		}, []string{"operation", "result"}),

		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claims_operation_duration_seconds",
			Help:    "Duration of claim registry operations including collaborator calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		CollaboratorDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claims_collaborator_call_duration_seconds",
			Help:    "Duration of synchronous calls to external collaborators",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"collaborator", "outcome"}),

		ClaimsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "claims_submitted_total",
			Help: "Total number of claims accepted by submitClaim",
		}),

		PayoutsExecuted: f.NewCounter(prometheus.CounterOpts{
			Name: "claims_payouts_executed_total",
			Help: "Total number of payouts accepted by the payout distributor",
		}),
	}
}

// ObserveOperation records one operation's outcome and duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation, result string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, result).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveCollaborator records the latency of a collaborator call.
func (m *Metrics) ObserveCollaborator(collaborator string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CollaboratorDuration.WithLabelValues(collaborator, outcome).Observe(d.Seconds())
}

func (m *Metrics) IncrementClaimsSubmitted() {
	if m != nil {
		m.ClaimsSubmitted.Inc()
	}
}

func (m *Metrics) IncrementPayoutsExecuted() {
	if m != nil {
		m.PayoutsExecuted.Inc()
	}
}
