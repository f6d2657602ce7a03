// Package metrics exposes Prometheus counters for provisioning runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the provisioning metrics. A nil *Recorder discards
// everything, so callers need not check.
type Recorder struct {
	results  *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rmap_provisioning_results_total",
				Help: "Provisioning outcomes by resource kind.",
			},
			[]string{"kind", "outcome"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rmap_runs_total",
				Help: "Completed provisioning runs by status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rmap_run_duration_seconds",
			Help:    "Wall time of provisioning runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	for _, c := range []prometheus.Collector{r.results, r.runs, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Result counts one resource outcome.
func (r *Recorder) Result(kind, outcome string) {
	if r == nil {
		return
	}
	r.results.WithLabelValues(kind, outcome).Inc()
}

// Run records a finished run.
func (r *Recorder) Run(ok bool, d time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	r.runs.WithLabelValues(status).Inc()
	r.duration.Observe(d.Seconds())
}
