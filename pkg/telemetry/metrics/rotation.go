package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/rotation"
)

// Actions reported in the action label of rotation_files_total.
const (
	ActionPromote    = "promote"
	ActionQuarantine = "quarantine"
	ActionDelete     = "delete"
)

// RotationMetrics tracks the retention tier transitions.
//
// Metrics:
//   - easybackup_rotation_files_total: Files acted upon by tier and action
//   - easybackup_rotation_errors_total: Rotation failures by stage
type RotationMetrics struct {
	filesTotal  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
}

// NewRotationMetrics creates and registers rotation metrics with the provided registry.
func NewRotationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RotationMetrics {
	rm := &RotationMetrics{
		filesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rotation_files_total",
				Help:      "Total number of files promoted, quarantined or deleted by rotation",
			},
			[]string{"tier", "action"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rotation_errors_total",
				Help:      "Total number of rotation failures",
			},
			[]string{"tier"},
		),
	}

	registry.MustRegister(rm.filesTotal, rm.errorsTotal)

	return rm
}

// Observe adds the counts of a rotation result.
func (rm *RotationMetrics) Observe(result *rotation.Result) {
	for _, tier := range result.Tiers {
		rm.filesTotal.WithLabelValues(tier.Tier, ActionPromote).Add(float64(tier.Promoted))
		rm.filesTotal.WithLabelValues(tier.Tier, ActionQuarantine).Add(float64(tier.Quarantined))
		rm.filesTotal.WithLabelValues(tier.Tier, ActionDelete).Add(float64(tier.Deleted))
	}
	if !result.Reap.Skipped {
		rm.filesTotal.WithLabelValues(rotation.StageQuarantine, ActionDelete).Add(float64(result.Reap.Deleted))
	}

	for _, rec := range result.Errors {
		rm.errorsTotal.WithLabelValues(rec.Stage).Inc()
	}
}
