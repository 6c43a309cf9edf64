// Package metrics exports the outcome of a run in the Prometheus text format, for collection by
// the node exporter's textfile collector.
package metrics

import (
	"github.com/digitalocean/atlas-check/pkg/types/check"
	"github.com/prometheus/client_golang/prometheus"
)

// Counter is implemented by the result aggregator.
type Counter interface {
	Counts() (ok, warn, errors int)
}

// Metrics holds the gauges for a single run.
type Metrics struct {
	registry *prometheus.Registry
	probes   *prometheus.GaugeVec
	status   *prometheus.GaugeVec
}

// New creates a registry with the run's gauges.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "atlas_check_probes",
				Help: "Number of probes with at least one outcome in each state",
			},
			[]string{"measurement_id", "kind", "state"},
		),
		status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "atlas_check_status",
				Help: "Verdict of the last run (0=OK, 1=Warning, 2=Critical, 3=Unknown)",
			},
			[]string{"measurement_id", "kind"},
		),
	}
	m.registry.MustRegister(m.probes, m.status)
	return m
}

// Observe records the verdict and per state probe counts.
func (m *Metrics) Observe(measurementID, kind string, status check.Status, c Counter) {
	m.status.WithLabelValues(measurementID, kind).Set(float64(status.ExitCode()))
	if c == nil {
		return
	}
	ok, warn, errors := c.Counts()
	m.probes.WithLabelValues(measurementID, kind, "ok").Set(float64(ok))
	m.probes.WithLabelValues(measurementID, kind, "warn").Set(float64(warn))
	m.probes.WithLabelValues(measurementID, kind, "error").Set(float64(errors))
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile atomically writes the metrics to path.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
