package tracking

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_sessions_total",
			Help: "Tracked recommendation sessions by recommendation type.",
		},
		[]string{"type"},
	)

	feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_feedback_total",
			Help: "Feedback on recommended products by action and algorithm.",
		},
		[]string{"action", "algorithm"},
	)
)

func init() {
	prometheus.MustRegister(sessionsStarted, feedbackTotal)
}
