package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"brainstorm-hq/easybackup/pkg/config"
	"brainstorm-hq/easybackup/pkg/rotation"
)

// Collector owns every Prometheus metric exported by easybackup.
//
// A CLI run records into a fresh collector and writes it to a node_exporter
// textfile once finished. The daemon keeps a single collector for its
// lifetime and serves it over HTTP.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	rotationMetrics *RotationMetrics
	backupMetrics   *BackupMetrics
}

// NewCollector creates a collector registering its metrics with registry.
// A nil registry gets a private one, so collectors never clash with the
// global default registry.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.rotationMetrics = NewRotationMetrics(cfg, registry)
	c.backupMetrics = NewBackupMetrics(cfg, registry)

	return c
}

// ObserveRotation records the outcome of a rotation run.
func (c *Collector) ObserveRotation(result *rotation.Result) {
	if !c.config.Enabled || result == nil {
		return
	}

	c.rotationMetrics.Observe(result)
}

// RecordBackupFiles records files produced by one backup step.
//
// Parameters:
//   - kind: the kind of backup ("data_folder", "postgresql", "mysql")
//   - count: number of files written
func (c *Collector) RecordBackupFiles(kind string, count int) {
	if !c.config.Enabled {
		return
	}

	c.backupMetrics.RecordFiles(kind, count)
}

// RecordRun records a completed backup run.
//
// Parameters:
//   - finished: when the run completed
//   - duration: total run duration
//   - errors: number of error records in the run report
func (c *Collector) RecordRun(finished time.Time, duration time.Duration, errors int) {
	if !c.config.Enabled {
		return
	}

	c.backupMetrics.RecordRun(finished, duration, errors)
}

// SetTargetFree updates the free space of the backup target filesystem.
func (c *Collector) SetTargetFree(bytes uint64) {
	if !c.config.Enabled {
		return
	}

	c.backupMetrics.SetTargetFree(bytes)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
