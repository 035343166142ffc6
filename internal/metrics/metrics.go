// Package metrics defines the Prometheus counters the services report to.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service counters.
type Metrics struct {
	Gradings           *prometheus.CounterVec
	BadgeIssuances     *prometheus.CounterVec
	CertificateBatches *prometheus.CounterVec
	ProgressSyncs      *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Gradings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_gradings_total",
				Help: "Graded quiz attempts by outcome",
			},
			[]string{"outcome"},
		),
		BadgeIssuances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_badge_issuances_total",
				Help: "Badge issuances by result",
			},
			[]string{"result"},
		),
		CertificateBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_certificate_batches_total",
				Help: "Certificate batch runs by result",
			},
			[]string{"result"},
		),
		ProgressSyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_progress_syncs_total",
				Help: "Progress synchronisations by mode",
			},
			[]string{"mode"},
		),
		SideEffectFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_side_effect_failures_total",
				Help: "Failed side effects that did not abort the request",
			},
			[]string{"domain"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.Gradings, m.BadgeIssuances, m.CertificateBatches, m.ProgressSyncs, m.SideEffectFailures)
	return m
}

// Handler exposes the counters in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
