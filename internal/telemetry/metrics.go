package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "azle"

// Artifact size phases.
const (
	PhaseUnoptimized = "unoptimized"
	PhaseOptimized   = "optimized"
)

// Metrics records the measurements of one build run.
//
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.GaugeVec
	artifactBytes *prometheus.GaugeVec
	success       *prometheus.GaugeVec
	lastRun       *prometheus.GaugeVec
	exports       *prometheus.GaugeVec
}

// NewMetrics creates metrics in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		stageDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "build",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage in the last run",
		}, []string{"canister", "stage"}),

		artifactBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "build",
			Name:      "artifact_bytes",
			Help:      "Size of the canister binary before and after optimization",
		}, []string{"canister", "phase"}),

		success: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "build",
			Name:      "success",
			Help:      "Whether the last run succeeded (1) or failed (0)",
		}, []string{"canister"}),

		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "build",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}, []string{"canister"}),

		exports: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "build",
			Name:      "exported_functions",
			Help:      "Functions exported by the verified canister binary",
		}, []string{"canister"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records the duration of a stage.
func (m *Metrics) ObserveStage(canister, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(canister, stage).Set(d.Seconds())
}

// SetArtifactSize records the binary size for a phase.
func (m *Metrics) SetArtifactSize(canister, phase string, size int64) {
	if m == nil {
		return
	}
	m.artifactBytes.WithLabelValues(canister, phase).Set(float64(size))
}

// SetExports records the number of exported functions.
func (m *Metrics) SetExports(canister string, n int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(canister).Set(float64(n))
}

// Finish records the run outcome and completion time.
func (m *Metrics) Finish(canister string, err error, at time.Time) {
	if m == nil {
		return
	}
	ok := 1.0
	if err != nil {
		ok = 0
	}
	m.success.WithLabelValues(canister).Set(ok)
	m.lastRun.WithLabelValues(canister).Set(float64(at.Unix()))
}

// WriteFile atomically writes all metrics to path in the text exposition
// format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
