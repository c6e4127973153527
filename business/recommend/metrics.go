package recommend

import "github.com/prometheus/client_golang/prometheus"

var (
	recommendationsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation responses by fallback tier.",
		},
		[]string{"tier"},
	)

	generatorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_generator_failures_total",
			Help: "Candidate generator failures by generator.",
		},
		[]string{"generator"},
	)

	generatorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_generator_latency_seconds",
			Help:    "Latency of each candidate generator.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"generator"},
	)
)

func init() {
	prometheus.MustRegister(recommendationsServed, generatorFailures, generatorLatency)
}
