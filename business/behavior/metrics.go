package behavior

import "github.com/prometheus/client_golang/prometheus"

var behaviorEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "behavior_events_total",
		Help: "Recorded behavior events by type.",
	},
	[]string{"behavior_type"},
)

func init() {
	prometheus.MustRegister(behaviorEventsTotal)
}
