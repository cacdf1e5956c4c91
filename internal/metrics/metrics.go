// Package metrics exposes execution counters and latencies in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private Prometheus registry so tests and multiple servers in one
// process never collide on the global one.
type Recorder struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors attached.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coderunner",
			Name:      "executions_total",
			Help:      "Executions by language and outcome.",
		}, []string{"language", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "coderunner",
			Name:      "execution_duration_seconds",
			Help:      "Wall-clock time of an execution, compile step included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"language", "mode"}),
	}

	reg.MustRegister(
		r.executions,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveExecution records one finished execution. mode may be empty when the
// language was never resolved.
func (r *Recorder) ObserveExecution(language, mode, outcome string, d time.Duration) {
	r.executions.WithLabelValues(language, outcome).Inc()
	if mode != "" {
		r.duration.WithLabelValues(language, mode).Observe(d.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
