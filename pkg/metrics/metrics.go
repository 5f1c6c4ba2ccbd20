// Package metrics exports run results as a Prometheus textfile, for node
// exporters that collect textfiles from a directory.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cogsync"

// Recorder holds the gauges for one run. Each run gets its own registry so
// the textfile only ever describes the latest run.
type Recorder struct {
	registry *prometheus.Registry

	files     *prometheus.GaugeVec
	duration  prometheus.Gauge
	timestamp prometheus.Gauge
	success   prometheus.Gauge
	dryRun    prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		files: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_files",
			Help:      "Files considered by the last run, by outcome",
		}, []string{"command", "outcome"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		timestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_timestamp_seconds",
			Help:      "Unix time the last run started",
		}),
		success: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 if the last run completed without a fatal error",
		}),
		dryRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_dry_run",
			Help:      "1 if the last run wrote nothing",
		}),
	}
}

// Observe records a completed run. report may be nil when runErr is fatal.
func (r *Recorder) Observe(report *types.Report, runErr error) {
	if runErr != nil && errors.IsFatal(runErr) {
		r.success.Set(0)
	} else {
		r.success.Set(1)
	}
	if report == nil {
		return
	}

	c := report.Counts
	for outcome, n := range map[types.Outcome]int{
		types.OutcomeUpdated:   c.Updated,
		types.OutcomeAdded:     c.Added,
		types.OutcomeUnchanged: c.Unchanged,
		types.OutcomeConflict:  c.Preserved,
		types.OutcomeMissing:   c.Missing,
		types.OutcomeLocal:     c.Local,
		types.OutcomeError:     c.Errors,
		types.OutcomeModified:  c.Modified,
	} {
		r.files.WithLabelValues(report.Command, outcome.String()).Set(float64(n))
	}
	r.duration.Set(report.Duration.Seconds())
	if !report.StartedAt.IsZero() {
		r.timestamp.Set(float64(report.StartedAt.Unix()))
	}
	if report.DryRun {
		r.dryRun.Set(1)
	} else {
		r.dryRun.Set(0)
	}
}

// Gatherer exposes the registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the gauges to path atomically
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to create metrics directory").
			WithDetail("path", path)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to write metrics textfile").
			WithDetail("path", path)
	}
	return nil
}
