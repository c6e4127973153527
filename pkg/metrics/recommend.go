package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of the recommendation HTTP handlers, by endpoint
	RecommendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommend_handler_latency_seconds",
		Help:    "Latency of recommendation handlers",
		Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2, 5},
	}, []string{"endpoint"})

	// Total number of recommendation requests, by endpoint and outcome
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_requests_total",
		Help: "Total number of recommendation requests",
	}, []string{"endpoint", "outcome"})

	// Fallback tier of every response, and whether it came from cache
	RecommendTiers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_response_tier_total",
		Help: "Recommendation responses by fallback tier",
	}, []string{"endpoint", "tier", "cached"})
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RecommendLatency,
			RecommendRequests,
			RecommendTiers,
		)
	})
}
