// Package metrics counts rows through a run and can dump them in the
// Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinicload"

// Recorder holds the counters of one run. It satisfies constraint.Sink.
// Every recording method is a no-op on a nil Recorder.
type Recorder struct {
	registry *prometheus.Registry

	rowsRead     *prometheus.CounterVec
	rowsDropped  *prometheus.CounterVec
	rowsOrphaned *prometheus.CounterVec
	rowsCopied   *prometheus.CounterVec
	statements   *prometheus.CounterVec
	lastRun      prometheus.Gauge
	duration     *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_read_total",
			Help: "Rows extracted per destination table.",
		}, []string{"table"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_dropped_total",
			Help: "Rows dropped by a column-length rule.",
		}, []string{"table", "rule"}),
		rowsOrphaned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_unresolved_total",
			Help: "Rows dropped because their natural key did not resolve.",
		}, []string{"table"}),
		rowsCopied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_copied_total",
			Help: "Rows appended to the destination.",
		}, []string{"table"}),
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "statements_total",
			Help: "Post-load and billing statements by outcome.",
		}, []string{"statement", "outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Unix time the run finished.",
		}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "phase_duration_seconds",
			Help: "Wall time per phase.",
		}, []string{"phase"}),
	}
	r.registry.MustRegister(r.rowsRead, r.rowsDropped, r.rowsOrphaned, r.rowsCopied,
		r.statements, r.lastRun, r.duration)
	return r
}

// Dropped implements constraint.Sink.
func (r *Recorder) Dropped(table, rule string, n int) {
	if r == nil {
		return
	}
	r.rowsDropped.WithLabelValues(table, rule).Add(float64(n))
}

func (r *Recorder) Read(table string, n int) {
	if r == nil {
		return
	}
	r.rowsRead.WithLabelValues(table).Add(float64(n))
}

func (r *Recorder) Unresolved(table string, n int) {
	if r == nil {
		return
	}
	r.rowsOrphaned.WithLabelValues(table).Add(float64(n))
}

func (r *Recorder) Copied(table string, n int64) {
	if r == nil {
		return
	}
	r.rowsCopied.WithLabelValues(table).Add(float64(n))
}

// Statement records whether a post-load or billing statement succeeded.
func (r *Recorder) Statement(name string, ok bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	r.statements.WithLabelValues(name, outcome).Inc()
}

func (r *Recorder) Phase(phase string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(phase).Set(d.Seconds())
}

// Finish stamps the completion time.
func (r *Recorder) Finish(t time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(t.Unix()))
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
