package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts analytics runs per symbol.
type Metrics struct {
	Runs     *prometheus.CounterVec
	Excluded *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the scheduler collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "futures_desk",
			Name:      "analytics_runs_total",
			Help:      "Analytics runs by symbol and status.",
		}, []string{"symbol", "status"}),
		Excluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "futures_desk",
			Name:      "excluded_brokers_total",
			Help:      "Brokers dropped from holding summaries.",
		}, []string{"symbol"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "futures_desk",
			Name:      "analytics_run_seconds",
			Help:      "Wall time of one analytics run.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"symbol"}),
	}
	reg.MustRegister(m.Runs, m.Excluded, m.Duration)
	return m
}
