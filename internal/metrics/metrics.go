// SPDX-License-Identifier: MPL-2.0

// Package metrics collects per-run build metrics and exports them in the
// Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/pkg/types"
)

const (
	namespace = "smartbuild"

	// StatusSuccess labels observations without an error.
	StatusSuccess = "success"
	// StatusFailure labels observations that returned an error.
	StatusFailure = "failure"
)

// Toolchain calls range from a sub-second restore no-op to multi-minute test runs.
var durationBuckets = []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1800}

// Recorder owns a private registry so runs never share global state.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	targetDuration *prometheus.HistogramVec
	invocations    *prometheus.CounterVec
	invocationTime *prometheus.HistogramVec
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		targetDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "target_duration_seconds",
			Help:      "Duration of build target bodies",
			Buckets:   durationBuckets,
		}, []string{"target", "status"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toolchain_invocations_total",
			Help:      "Count of toolchain invocations by operation and outcome",
		}, []string{"operation", "status"}),
		invocationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "toolchain_invocation_duration_seconds",
			Help:      "Latency distribution of toolchain invocations",
			Buckets:   durationBuckets,
		}, []string{"operation"}),
	}
	r.registry.MustRegister(r.targetDuration, r.invocations, r.invocationTime)
	return r
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// ObserveTarget matches target.WithOnFinish.
func (r *Recorder) ObserveTarget(name string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.targetDuration.With(prometheus.Labels{"target": name, "status": status(err)}).Observe(elapsed.Seconds())
}

// ObserveInvocation matches toolchain.Observer.
func (r *Recorder) ObserveInvocation(op toolchain.Operation, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.invocations.With(prometheus.Labels{"operation": string(op), "status": status(err)}).Inc()
	r.invocationTime.With(prometheus.Labels{"operation": string(op)}).Observe(elapsed.Seconds())
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes the collected metrics to path.
func (r *Recorder) WriteTextfile(path types.FilesystemPath) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(string(path), r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
