// Package metrics exposes Prometheus metrics for the ledger facade.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	RecordsCreated    prometheus.Counter
	RecordsVerified   prometheus.Counter
	DuplicateProofs   prometheus.Counter
	MemorialsAttached prometheus.Counter
	IdentitiesBound   prometheus.Counter
	TransfersRejected prometheus.Counter
	RecordsTotal      prometheus.Gauge
}

// New creates all ledger metrics on the given registerer. Tests pass a fresh
// registry so parallel suites never collide on metric names.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_records_created_total",
			Help: "Total number of certificate records created.",
		}),
		RecordsVerified: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_records_verified_total",
			Help: "Total number of verification flag transitions.",
		}),
		DuplicateProofs: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_duplicate_proof_rejections_total",
			Help: "Total number of record creations rejected for a spent proof commitment.",
		}),
		MemorialsAttached: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_memorials_attached_total",
			Help: "Total number of memorial attachments, including overwrites.",
		}),
		IdentitiesBound: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_identities_bound_total",
			Help: "Total number of identity bindings created.",
		}),
		TransfersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "vitalis_transfers_rejected_total",
			Help: "Total number of rejected record transfer attempts.",
		}),
		RecordsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vitalis_records",
			Help: "Current number of certificate records in the ledger.",
		}),
	}
}
